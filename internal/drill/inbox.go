package drill

import (
	"sync"
	"time"
)

// DefaultInboxSize bounds how many answers can queue up while a note plays.
const DefaultInboxSize = 64

// Inbox queues events from input callbacks for Session.Run. Deliver never
// blocks, so an event's timestamp is its arrival time even while the
// session is busy presenting. Anything that arrived during a presentation
// is then dropped by the session's stale check.
type Inbox struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
	now    func() time.Time
}

// NewInbox returns an inbox holding up to size pending events.
func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{ch: make(chan Event, size), now: time.Now}
}

// Deliver stamps ev if it has no time and queues it. It reports false when
// the inbox is closed or full; the event is dropped in both cases.
func (b *Inbox) Deliver(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = b.now()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return false
	}
	select {
	case b.ch <- ev:
		return true
	default:
		return false
	}
}

// Events is the channel to pass to Session.Run.
func (b *Inbox) Events() <-chan Event {
	return b.ch
}

// Close ends the stream. Pending events are still readable. Safe to call
// more than once.
func (b *Inbox) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	close(b.ch)
}
