package drill

import (
	"math"

	"github.com/verte-zerg/notedrill/internal/notes"
)

// Record holds the answer counters of one note.
type Record struct {
	Correct   int
	Incorrect int
}

// Total returns the number of recorded attempts.
func (r Record) Total() int {
	return r.Correct + r.Incorrect
}

// WindowStats summarizes the rolling window.
type WindowStats struct {
	Correct int
	Total   int
}

// Wrong returns the number of failed outcomes in the window.
func (s WindowStats) Wrong() int {
	return s.Total - s.Correct
}

// Accuracy returns the share of correct outcomes, 0 for an empty window.
func (s WindowStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Tracker accumulates per-note performance for one practice run.
type Tracker struct {
	floor   float64
	records map[uint8]*Record
	window  *Window
	total   int
}

// NewTracker returns a tracker with empty counters and an empty window.
func NewTracker(p Params) *Tracker {
	return &Tracker{
		floor:   p.WeightFloor,
		records: map[uint8]*Record{},
		window:  NewWindow(p.WindowSize),
	}
}

// Update records one attempt at n.
func (t *Tracker) Update(n notes.Note, correct bool) {
	rec := t.record(n)
	if correct {
		rec.Correct++
	} else {
		rec.Incorrect++
	}
	t.window.Push(correct)
	t.total++
}

// Weight scores n by its error share. Never-seen notes score 1.0 and the
// result is never below the configured floor.
func (t *Tracker) Weight(n notes.Note) float64 {
	rec := t.Record(n)
	return weight(rec.Correct, rec.Incorrect, t.floor)
}

func weight(correct, incorrect int, floor float64) float64 {
	total := float64(correct + incorrect + 1)
	return math.Max(floor, float64(incorrect+1)/total)
}

// Record returns a copy of the counters for n.
func (t *Tracker) Record(n notes.Note) Record {
	if rec, ok := t.records[n.MIDI]; ok {
		return *rec
	}
	return Record{}
}

// WindowStats counts the correct outcomes in the rolling window. Only
// meaningful once WindowFull reports true.
func (t *Tracker) WindowStats() WindowStats {
	return WindowStats{Correct: t.window.Count(), Total: t.window.Len()}
}

// Recent returns the window's outcomes, oldest first.
func (t *Tracker) Recent() []bool {
	return t.window.Values()
}

func (t *Tracker) WindowFull() bool {
	return t.window.Full()
}

// TotalAttempts is the number of Update calls so far.
func (t *Tracker) TotalAttempts() int {
	return t.total
}

func (t *Tracker) record(n notes.Note) *Record {
	rec, ok := t.records[n.MIDI]
	if !ok {
		rec = &Record{}
		t.records[n.MIDI] = rec
	}
	return rec
}
