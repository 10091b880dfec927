package drill

// Window is a fixed-capacity ring of pass/fail outcomes. Once full, each
// push evicts the oldest entry.
type Window struct {
	buf   []bool
	start int
	size  int
}

// NewWindow returns an empty window holding at most capacity outcomes.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]bool, capacity)}
}

// Push appends an outcome.
func (w *Window) Push(ok bool) {
	if w.size < len(w.buf) {
		w.buf[(w.start+w.size)%len(w.buf)] = ok
		w.size++
		return
	}
	w.buf[w.start] = ok
	w.start = (w.start + 1) % len(w.buf)
}

func (w *Window) Len() int { return w.size }

func (w *Window) Cap() int { return len(w.buf) }

func (w *Window) Full() bool { return w.size == len(w.buf) }

// Count returns how many stored outcomes are true.
func (w *Window) Count() int {
	n := 0
	for i := 0; i < w.size; i++ {
		if w.buf[(w.start+i)%len(w.buf)] {
			n++
		}
	}
	return n
}

// Values returns the outcomes oldest first.
func (w *Window) Values() []bool {
	out := make([]bool, w.size)
	for i := range out {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}
