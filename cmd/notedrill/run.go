package main

import (
	"time"

	"github.com/verte-zerg/notedrill/internal/drill"
	"github.com/verte-zerg/notedrill/internal/model"
	"github.com/verte-zerg/notedrill/internal/notes"
)

// recorder collects a run's attempts for the archive.
type recorder struct {
	run      model.RunStats
	attempts []model.AttemptRow
}

func newRecorder(runID string, scale notes.Scale, input string, started time.Time) *recorder {
	return &recorder{run: model.RunStats{
		RunID:     runID,
		StartedAt: started,
		Scale:     scale.String(),
		Input:     input,
	}}
}

func (r *recorder) observe(a drill.AttemptRecord) {
	if a.Correct {
		r.run.Correct++
	} else {
		r.run.Incorrect++
	}
	r.attempts = append(r.attempts, model.AttemptRow{
		Seq:        a.Seq,
		Target:     a.Target.Name,
		TargetMIDI: int(a.Target.MIDI),
		Attempted:  a.Attempted.Name,
		Correct:    a.Correct,
		At:         a.At,
	})
}

func (r *recorder) snapshot() (model.RunStats, []model.AttemptRow) {
	return r.run, r.attempts
}

// finish stamps the end time, clamped to the last attempt.
func (r *recorder) finish(ended time.Time) (model.RunStats, []model.AttemptRow) {
	if n := len(r.attempts); n > 0 && ended.Before(r.attempts[n-1].At) {
		ended = r.attempts[n-1].At
	}
	r.run.EndedAt = ended
	return r.snapshot()
}
