// Package model defines shared data structures.
package model

import "time"

// Config defines drill settings resolved from flags and the config file.
type Config struct {
	Scale        string
	Window       int
	Dampening    float64
	WeightFloor  float64
	ReportEvery  int
	Seed         int64
	ShowNote     bool
	NoteDuration time.Duration
	Plain        bool

	MIDIIn       string
	MIDIOut      string
	MIDIChannel  int
	MIDIVelocity int
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// RunStats captures a completed practice run.
type RunStats struct {
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Scale     string
	Input     string
	Correct   int
	Incorrect int
}

// AttemptRow is one archived answer.
type AttemptRow struct {
	Seq        int
	Target     string
	TargetMIDI int
	Attempted  string
	Correct    bool
	At         time.Time
}

// NoteAggregate aggregates answers for one target note.
type NoteAggregate struct {
	Note      string
	MIDI      int
	Correct   int
	Incorrect int
}

// RunAggregate summarizes a run for reporting.
type RunAggregate struct {
	ID        int64
	RunID     string
	EndedAt   time.Time
	Correct   int
	Incorrect int
	Duration  time.Duration
}
