package drill

import (
	"math/rand"
	"time"

	"github.com/verte-zerg/notedrill/internal/notes"
)

// Selector draws the next note from tracker weights.
type Selector struct {
	scale     notes.Scale
	dampening float64
	rnd       *rand.Rand
}

// NewSelector returns a Selector drawing from rnd. A nil rnd is seeded
// with the current time.
func NewSelector(p Params, rnd *rand.Rand) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{scale: p.Scale, dampening: p.Dampening, rnd: rnd}
}

// Distribution returns the selection probability of every scale note in
// canonical order. The previous note, if any, is dampened first.
func (s *Selector) Distribution(t *Tracker, previous notes.Note, hasPrevious bool) []float64 {
	weights := make([]float64, len(s.scale))
	for i, n := range s.scale {
		weights[i] = t.Weight(n)
	}
	if hasPrevious {
		if idx := s.scale.Index(previous); idx >= 0 {
			weights[idx] *= s.dampening
		}
	}
	return normalize(weights)
}

// Next samples one note. The returned note should be passed back as
// previous on the following call.
func (s *Selector) Next(t *Tracker, previous notes.Note, hasPrevious bool) notes.Note {
	probs := s.Distribution(t, previous, hasPrevious)
	return s.scale[sample(s.rnd.Float64(), probs)]
}

func normalize(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		panic("drill: cannot normalize an all-zero weight vector")
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / total
	}
	return out
}

// sample maps u in [0,1) onto probs by inverse CDF.
func sample(u float64, probs []float64) int {
	acc := 0.0
	for i, p := range probs {
		acc += p
		if u < acc {
			return i
		}
	}
	// rounding can leave acc a hair under 1
	for i := len(probs) - 1; i >= 0; i-- {
		if probs[i] > 0 {
			return i
		}
	}
	return len(probs) - 1
}
