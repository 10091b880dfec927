package midiio

import (
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"go.uber.org/zap"

	"github.com/verte-zerg/notedrill/internal/drill"
)

// Listener forwards decoded events from an input port.
type Listener struct {
	name string
	stop func()
}

// Listen opens the input port matching query and calls deliver for every
// incoming message from the driver's goroutine.
func Listen(query string, deliver func(drill.Event), logger *zap.Logger) (*Listener, error) {
	in, err := openIn(query)
	if err != nil {
		return nil, err
	}
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		ev := Decode(msg, time.Now())
		if ev.Kind == drill.EventOther {
			logger.Debug("ignoring MIDI message", zap.String("msg", msg.String()))
			return
		}
		deliver(ev)
	}, midi.HandleError(func(err error) {
		logger.Warn("MIDI listener error", zap.String("port", in.String()), zap.Error(err))
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", in.String(), err)
	}
	logger.Info("MIDI input connected", zap.String("port", in.String()))
	return &Listener{name: in.String(), stop: stop}, nil
}

// Name returns the connected port name.
func (l *Listener) Name() string {
	return l.name
}

// Stop ends listening.
func (l *Listener) Stop() {
	if l.stop != nil {
		l.stop()
		l.stop = nil
	}
}
