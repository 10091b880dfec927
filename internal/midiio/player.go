package midiio

import (
	"context"
	"fmt"
	"time"

	"gitlab.com/gomidi/midi/v2"

	"github.com/verte-zerg/notedrill/internal/notes"
)

// PlayerConfig controls how targets are sounded.
type PlayerConfig struct {
	Channel  uint8
	Velocity uint8
	Duration time.Duration
}

// Player sounds notes on a MIDI output. It satisfies drill.Presenter.
type Player struct {
	send func(midi.Message) error
	cfg  PlayerConfig
}

// NewPlayer wraps a send function, such as the one returned by midi.SendTo.
func NewPlayer(send func(midi.Message) error, cfg PlayerConfig) *Player {
	if cfg.Velocity == 0 {
		cfg.Velocity = 127
	}
	if cfg.Duration <= 0 {
		cfg.Duration = time.Second
	}
	return &Player{send: send, cfg: cfg}
}

// OpenPlayer connects to the output port matching query.
func OpenPlayer(query string, cfg PlayerConfig) (*Player, error) {
	out, err := openOut(query)
	if err != nil {
		return nil, err
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", out.String(), err)
	}
	return NewPlayer(send, cfg), nil
}

// Present holds n for the configured duration. The note is always released,
// even when ctx is cancelled mid-note.
func (p *Player) Present(ctx context.Context, n notes.Note) error {
	if err := p.send(midi.NoteOn(p.cfg.Channel, n.MIDI, p.cfg.Velocity)); err != nil {
		return fmt.Errorf("failed to send note on: %w", err)
	}
	timer := time.NewTimer(p.cfg.Duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
	if err := p.send(midi.NoteOff(p.cfg.Channel, n.MIDI)); err != nil {
		return fmt.Errorf("failed to send note off: %w", err)
	}
	return nil
}
