// Package drill implements adaptive note selection and the practice loop.
package drill

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/notedrill/internal/notes"
)

// ErrInvalidParams is wrapped by every Params validation failure.
var ErrInvalidParams = errors.New("drill: invalid parameters")

const (
	DefaultWindowSize  = 10
	DefaultDampening   = 0.3
	DefaultWeightFloor = 0.1
	DefaultReportEvery = 10
)

// Params is the immutable configuration shared by Tracker, Selector and
// Session.
type Params struct {
	Scale       notes.Scale
	WindowSize  int
	Dampening   float64
	WeightFloor float64
	ReportEvery int
}

// DefaultParams drills C4..B4 with the standard weighting constants.
func DefaultParams() Params {
	return Params{
		Scale:       notes.CMajor4,
		WindowSize:  DefaultWindowSize,
		Dampening:   DefaultDampening,
		WeightFloor: DefaultWeightFloor,
		ReportEvery: DefaultReportEvery,
	}
}

// Validate reports the first out-of-range field.
func (p Params) Validate() error {
	if err := p.Scale.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	if p.WindowSize <= 0 {
		return fmt.Errorf("%w: window size %d must be > 0", ErrInvalidParams, p.WindowSize)
	}
	if p.ReportEvery <= 0 {
		return fmt.Errorf("%w: report interval %d must be > 0", ErrInvalidParams, p.ReportEvery)
	}
	if p.Dampening <= 0 || p.Dampening >= 1 {
		return fmt.Errorf("%w: dampening %.3f out of range (0, 1)", ErrInvalidParams, p.Dampening)
	}
	if p.WeightFloor <= 0 || p.WeightFloor > 1 {
		return fmt.Errorf("%w: weight floor %.3f out of range (0, 1]", ErrInvalidParams, p.WeightFloor)
	}
	return nil
}
