// Package midiio connects MIDI hardware to a drill session: it lists
// ports, turns incoming messages into drill events and plays targets.
package midiio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/verte-zerg/notedrill/internal/drill"
	"github.com/verte-zerg/notedrill/internal/notes"
)

// ErrPortNotFound is returned when no port matches a --in/--out value.
var ErrPortNotFound = errors.New("midiio: port not found")

// Port describes one MIDI port.
type Port struct {
	Number int
	Name   string
}

func (p Port) String() string {
	return fmt.Sprintf("%d: %s", p.Number, p.Name)
}

// Ports lists the input and output ports of the registered driver.
func Ports() (ins, outs []Port) {
	for _, in := range midi.GetInPorts() {
		ins = append(ins, Port{Number: in.Number(), Name: in.String()})
	}
	for _, out := range midi.GetOutPorts() {
		outs = append(outs, Port{Number: out.Number(), Name: out.String()})
	}
	return ins, outs
}

// Match picks a port by number or by case-insensitive name substring.
// An exact name wins over a substring match.
func Match(ports []Port, query string) (Port, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Port{}, fmt.Errorf("%w: empty port name", ErrPortNotFound)
	}
	if num, err := strconv.Atoi(query); err == nil {
		for _, p := range ports {
			if p.Number == num {
				return p, nil
			}
		}
		return Port{}, fmt.Errorf("%w: no port number %d", ErrPortNotFound, num)
	}
	lower := strings.ToLower(query)
	var partial []Port
	for _, p := range ports {
		name := strings.ToLower(p.Name)
		if name == lower {
			return p, nil
		}
		if strings.Contains(name, lower) {
			partial = append(partial, p)
		}
	}
	switch len(partial) {
	case 0:
		return Port{}, fmt.Errorf("%w: %q", ErrPortNotFound, query)
	case 1:
		return partial[0], nil
	default:
		return Port{}, fmt.Errorf("%w: %q is ambiguous (%d ports match)", ErrPortNotFound, query, len(partial))
	}
}

// Decode converts a MIDI message into a drill event. Only note-on with a
// positive velocity counts as an attempt; every other message is returned
// as EventOther.
func Decode(msg midi.Message, at time.Time) drill.Event {
	var ch, key, vel uint8
	if msg.GetNoteStart(&ch, &key, &vel) {
		return drill.Event{Kind: drill.EventAttempt, Note: notes.FromMIDI(key), At: at}
	}
	return drill.Event{Kind: drill.EventOther, At: at}
}

// Close releases the registered driver.
func Close() {
	midi.CloseDriver()
}

func openIn(query string) (drivers.In, error) {
	ins, _ := Ports()
	p, err := Match(ins, query)
	if err != nil {
		return nil, err
	}
	return midi.InPort(p.Number)
}

func openOut(query string) (drivers.Out, error) {
	_, outs := Ports()
	p, err := Match(outs, query)
	if err != nil {
		return nil, err
	}
	return midi.OutPort(p.Number)
}
