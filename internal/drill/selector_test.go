package drill

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/notedrill/internal/notes"
)

func twoNoteParams() Params {
	p := DefaultParams()
	p.Scale = notes.Scale{notes.CMajor4[0], notes.CMajor4[1]}
	return p
}

func TestDistributionDampensPrevious(t *testing.T) {
	p := twoNoteParams()
	sel := NewSelector(p, rand.New(rand.NewSource(1)))
	tr := NewTracker(p)

	probs := sel.Distribution(tr, p.Scale[0], true)
	assert.InDelta(t, 0.3/1.3, probs[0], 1e-9)
	assert.InDelta(t, 1.0/1.3, probs[1], 1e-9)
}

func TestDistributionWithoutPrevious(t *testing.T) {
	p := DefaultParams()
	sel := NewSelector(p, rand.New(rand.NewSource(1)))
	tr := NewTracker(p)

	probs := sel.Distribution(tr, notes.Note{}, false)
	require.Len(t, probs, len(p.Scale))
	for _, prob := range probs {
		assert.InDelta(t, 1.0/7.0, prob, 1e-9)
	}
}

func TestDistributionSumsToOne(t *testing.T) {
	p := DefaultParams()
	rnd := rand.New(rand.NewSource(7))
	sel := NewSelector(p, rnd)
	for round := 0; round < 50; round++ {
		tr := NewTracker(p)
		for i := 0; i < 30; i++ {
			tr.Update(p.Scale[rnd.Intn(len(p.Scale))], rnd.Intn(3) > 0)
		}
		prev := p.Scale[rnd.Intn(len(p.Scale))]
		sum := 0.0
		for _, prob := range sel.Distribution(tr, prev, round%2 == 0) {
			sum += prob
		}
		require.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestDampeningStrictlyReducesPrevious(t *testing.T) {
	p := DefaultParams()
	sel := NewSelector(p, nil)
	tr := NewTracker(p)
	tr.Update(p.Scale[2], false)
	tr.Update(p.Scale[4], true)
	tr.Update(p.Scale[4], true)

	plain := sel.Distribution(tr, notes.Note{}, false)
	for i, prev := range p.Scale {
		damped := sel.Distribution(tr, prev, true)
		assert.Less(t, damped[i], plain[i], "previous %s", prev)
	}
}

func TestDistributionIgnoresForeignPrevious(t *testing.T) {
	p := DefaultParams()
	sel := NewSelector(p, nil)
	tr := NewTracker(p)
	assert.Equal(t, sel.Distribution(tr, notes.Note{}, false), sel.Distribution(tr, notes.FromMIDI(61), true))
}

func TestNextFollowsDistribution(t *testing.T) {
	p := twoNoteParams()
	sel := NewSelector(p, rand.New(rand.NewSource(42)))
	tr := NewTracker(p)

	const draws = 20000
	hits := 0
	for i := 0; i < draws; i++ {
		if sel.Next(tr, p.Scale[0], true) == p.Scale[0] {
			hits++
		}
	}
	assert.InDelta(t, 0.3/1.3, float64(hits)/draws, 0.02)
}

func TestNextFavoursMissedNotes(t *testing.T) {
	p := DefaultParams()
	sel := NewSelector(p, rand.New(rand.NewSource(3)))
	tr := NewTracker(p)
	for _, n := range p.Scale {
		for i := 0; i < 20; i++ {
			tr.Update(n, true)
		}
	}
	hard := p.Scale[5]
	for i := 0; i < 20; i++ {
		tr.Update(hard, false)
	}

	counts := map[notes.Note]int{}
	for i := 0; i < 5000; i++ {
		counts[sel.Next(tr, notes.Note{}, false)]++
	}
	for _, n := range p.Scale {
		if n == hard {
			continue
		}
		assert.Greater(t, counts[hard], counts[n], "expected %s drawn more than %s", hard, n)
	}
}

func TestSample(t *testing.T) {
	probs := []float64{0.25, 0.5, 0.25}
	assert.Equal(t, 0, sample(0, probs))
	assert.Equal(t, 1, sample(0.25, probs))
	assert.Equal(t, 1, sample(0.74, probs))
	assert.Equal(t, 2, sample(0.75, probs))
	assert.Equal(t, 2, sample(0.9999999999, probs))
	assert.Equal(t, 1, sample(1.0, []float64{0.5, 0.5, 0}))
}

func TestNormalizePanicsOnZeroVector(t *testing.T) {
	assert.Panics(t, func() { normalize([]float64{0, 0}) })
}

func TestParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())

	bad := []func(*Params){
		func(p *Params) { p.Scale = nil },
		func(p *Params) { p.WindowSize = 0 },
		func(p *Params) { p.ReportEvery = -1 },
		func(p *Params) { p.Dampening = 0 },
		func(p *Params) { p.Dampening = 1.5 },
		func(p *Params) { p.Dampening = 1 },
		func(p *Params) { p.WeightFloor = 0 },
	}
	for i, mutate := range bad {
		p := DefaultParams()
		mutate(&p)
		assert.ErrorIs(t, p.Validate(), ErrInvalidParams, "case %d", i)
	}
}
