package drill

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/notedrill/internal/notes"
)

// State is the position of a Session in its practice cycle.
type State int

const (
	StateIdle State = iota
	StatePresenting
	StateAwaiting
	StateRecording
	StateReporting
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePresenting:
		return "presenting"
	case StateAwaiting:
		return "awaiting"
	case StateRecording:
		return "recording"
	case StateReporting:
		return "reporting"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// EventKind classifies input events.
type EventKind int

const (
	EventOther EventKind = iota
	EventAttempt
	EventReplay
)

// Event is one item of the input feed. Only EventAttempt and EventReplay
// affect the session; everything else is dropped.
type Event struct {
	Kind EventKind
	Note notes.Note
	// At is when the input happened. Attempts stamped before the current
	// target finished presenting are treated as stale and dropped.
	At time.Time
}

// Attempt builds an attempt event for a played or pressed note.
func Attempt(n notes.Note) Event {
	return Event{Kind: EventAttempt, Note: n}
}

// Replay builds a request to present the current target again.
func Replay() Event {
	return Event{Kind: EventReplay}
}

// OutcomeKind says what Handle did with an event.
type OutcomeKind int

const (
	OutcomeIgnored OutcomeKind = iota
	OutcomeCorrect
	OutcomeWrong
	OutcomeReplayed
)

// Outcome describes the effect of one handled event.
type Outcome struct {
	Kind      OutcomeKind
	Target    notes.Note
	Attempted notes.Note
	// Next is the target now awaiting an answer.
	Next notes.Note
	// Report is set when this answer completed a reporting interval.
	Report *WindowStats
}

// Presenter renders or plays a note. Failures are logged and never end the
// session.
type Presenter interface {
	Present(ctx context.Context, n notes.Note) error
}

// Reporter displays a rolling accuracy snapshot.
type Reporter interface {
	Report(ctx context.Context, stats WindowStats)
}

// AttemptRecord is passed to observers after every recorded attempt.
type AttemptRecord struct {
	Seq       int
	Target    notes.Note
	Attempted notes.Note
	Correct   bool
	At        time.Time
}

// Option customizes a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithObserver registers a callback invoked after each recorded attempt.
func WithObserver(fn func(AttemptRecord)) Option {
	return func(s *Session) {
		s.observer = fn
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session runs the present → answer → record cycle. It is owned by a single
// goroutine and does no locking.
type Session struct {
	params    Params
	tracker   *Tracker
	selector  *Selector
	presenter Presenter
	reporter  Reporter
	observer  func(AttemptRecord)
	logger    *zap.Logger
	now       func() time.Time

	state       State
	target      notes.Note
	previous    notes.Note
	hasPrevious bool
	presentedAt time.Time
}

// NewSession wires a session over fresh tracker state.
func NewSession(p Params, selector *Selector, presenter Presenter, reporter Reporter, opts ...Option) *Session {
	s := &Session{
		params:    p,
		tracker:   NewTracker(p),
		selector:  selector,
		presenter: presenter,
		reporter:  reporter,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start picks the first target and presents it. Calling Start on a session
// that already started is a no-op returning the current target.
func (s *Session) Start(ctx context.Context) notes.Note {
	if s.state != StateIdle {
		return s.target
	}
	s.advance(ctx)
	return s.target
}

// Handle applies one input event.
func (s *Session) Handle(ctx context.Context, ev Event) Outcome {
	if s.state != StateAwaiting {
		return Outcome{Kind: OutcomeIgnored, Next: s.target}
	}
	switch ev.Kind {
	case EventReplay:
		s.present(ctx)
		return Outcome{Kind: OutcomeReplayed, Target: s.target, Next: s.target}
	case EventAttempt:
	default:
		return Outcome{Kind: OutcomeIgnored, Next: s.target}
	}
	if !ev.At.IsZero() && ev.At.Before(s.presentedAt) {
		s.logger.Debug("dropping stale attempt", zap.String("note", ev.Note.Name))
		return Outcome{Kind: OutcomeIgnored, Next: s.target}
	}

	s.state = StateRecording
	target := s.target
	correct := ev.Note.MIDI == target.MIDI
	s.tracker.Update(target, correct)
	s.logger.Debug("attempt recorded",
		zap.String("target", target.Name),
		zap.String("played", ev.Note.Name),
		zap.Bool("correct", correct),
		zap.Int("attempts", s.tracker.TotalAttempts()))
	if s.observer != nil {
		at := ev.At
		if at.IsZero() {
			at = s.now()
		}
		s.observer(AttemptRecord{
			Seq:       s.tracker.TotalAttempts(),
			Target:    target,
			Attempted: ev.Note,
			Correct:   correct,
			At:        at,
		})
	}

	out := Outcome{Target: target, Attempted: ev.Note}
	if !correct {
		out.Kind = OutcomeWrong
		s.present(ctx)
		out.Next = s.target
		return out
	}

	out.Kind = OutcomeCorrect
	s.previous = target
	s.hasPrevious = true
	if s.tracker.TotalAttempts()%s.params.ReportEvery == 0 && s.tracker.WindowFull() {
		s.state = StateReporting
		stats := s.tracker.WindowStats()
		out.Report = &stats
		if s.reporter != nil {
			s.reporter.Report(ctx, stats)
		}
	}
	s.advance(ctx)
	out.Next = s.target
	return out
}

// Run starts the session if needed and feeds it events until ctx is done
// or the channel is closed.
func (s *Session) Run(ctx context.Context, events <-chan Event) error {
	s.Start(ctx)
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				s.Stop()
				return nil
			}
			s.Handle(ctx, ev)
		}
	}
}

// Stop ends the session. Later events are ignored.
func (s *Session) Stop() {
	if s.state == StateEnded {
		return
	}
	s.state = StateEnded
	s.logger.Debug("session ended", zap.Int("attempts", s.tracker.TotalAttempts()))
}

func (s *Session) State() State { return s.state }

// Target returns the note currently awaiting an answer.
func (s *Session) Target() notes.Note { return s.target }

// Tracker exposes the run's performance state for display.
func (s *Session) Tracker() *Tracker { return s.tracker }

func (s *Session) advance(ctx context.Context) {
	s.target = s.selector.Next(s.tracker, s.previous, s.hasPrevious)
	s.logger.Debug("next target", zap.String("note", s.target.Name))
	s.present(ctx)
}

func (s *Session) present(ctx context.Context) {
	s.state = StatePresenting
	if s.presenter != nil {
		if err := s.presenter.Present(ctx, s.target); err != nil {
			s.logger.Warn("failed to present note", zap.String("note", s.target.Name), zap.Error(err))
		}
	}
	s.presentedAt = s.now()
	s.state = StateAwaiting
}
