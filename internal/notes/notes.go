// Package notes defines the pitches a drill is built from.
package notes

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrUnknownNote   = errors.New("notes: unknown note")
	ErrEmptyScale    = errors.New("notes: scale is empty")
	ErrDuplicateNote = errors.New("notes: duplicate note in scale")
)

var pitchClasses = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// Note is a single pitch identified by its MIDI number.
type Note struct {
	MIDI uint8
	Name string
}

// FromMIDI builds a note with its scientific pitch name (60 is C4).
func FromMIDI(n uint8) Note {
	return Note{MIDI: n, Name: fmt.Sprintf("%s%d", pitchClasses[int(n)%12], int(n)/12-1)}
}

// Parse accepts names like "C4", "f#3" or "Bb4".
func Parse(name string) (Note, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return Note{}, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	letter := strings.ToUpper(s[:1])
	class := -1
	for i, pc := range pitchClasses {
		if pc == letter {
			class = i
			break
		}
	}
	if class < 0 {
		return Note{}, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	rest := s[1:]
	switch {
	case strings.HasPrefix(rest, "#"):
		class++
		rest = rest[1:]
	case strings.HasPrefix(rest, "b"):
		class--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return Note{}, fmt.Errorf("%w: %q", ErrUnknownNote, name)
	}
	midi := (octave+1)*12 + class
	if midi < 0 || midi > 127 {
		return Note{}, fmt.Errorf("%w: %q out of MIDI range", ErrUnknownNote, name)
	}
	return FromMIDI(uint8(midi)), nil
}

// Frequency returns the equal-tempered frequency in Hz (A4 = 440).
func (n Note) Frequency() float64 {
	return 440 * math.Pow(2, (float64(n.MIDI)-69)/12)
}

func (n Note) String() string {
	return n.Name
}

// Scale is an ordered set of distinct notes. Order is the canonical order
// used for weighting and display.
type Scale []Note

// CMajor4 is C4..B4, the white keys of the fourth octave.
var CMajor4 = Scale{
	FromMIDI(60), FromMIDI(62), FromMIDI(64), FromMIDI(65),
	FromMIDI(67), FromMIDI(69), FromMIDI(71),
}

// ParseScale parses a comma or space separated list of note names.
func ParseScale(input string) (Scale, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	scale := make(Scale, 0, len(fields))
	for _, f := range fields {
		n, err := Parse(f)
		if err != nil {
			return nil, err
		}
		scale = append(scale, n)
	}
	if err := scale.Validate(); err != nil {
		return nil, err
	}
	return scale, nil
}

// Validate checks that the scale is non-empty and has no repeated pitch.
func (s Scale) Validate() error {
	if len(s) == 0 {
		return ErrEmptyScale
	}
	seen := make(map[uint8]struct{}, len(s))
	for _, n := range s {
		if _, ok := seen[n.MIDI]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateNote, n.Name)
		}
		seen[n.MIDI] = struct{}{}
	}
	return nil
}

// Index returns the position of n in the scale or -1.
func (s Scale) Index(n Note) int {
	for i, candidate := range s {
		if candidate.MIDI == n.MIDI {
			return i
		}
	}
	return -1
}

// ByMIDI looks up a scale member by MIDI number.
func (s Scale) ByMIDI(midi uint8) (Note, bool) {
	for _, n := range s {
		if n.MIDI == midi {
			return n, true
		}
	}
	return Note{}, false
}

// ByName looks up a scale member by name, case-insensitively.
func (s Scale) ByName(name string) (Note, bool) {
	parsed, err := Parse(name)
	if err != nil {
		return Note{}, false
	}
	return s.ByMIDI(parsed.MIDI)
}

func (s Scale) String() string {
	names := make([]string, len(s))
	for i, n := range s {
		names[i] = n.Name
	}
	return strings.Join(names, ",")
}
