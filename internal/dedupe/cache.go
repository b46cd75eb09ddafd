package dedupe

import (
	"sync"
	"time"
)

type mark struct {
	id       string
	deadline time.Time
}

// Window remembers event ids the worker has already applied, bounded both by
// count and by age. Kafka redelivers after a crash, so replays inside the
// window are skipped.
type Window struct {
	mu       sync.Mutex
	deadline map[string]time.Time
	fifo     []mark
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewWindow creates a window holding at most capacity ids for ttl each.
func NewWindow(capacity int, ttl time.Duration) *Window {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Window{
		deadline: make(map[string]time.Time, capacity),
		fifo:     make([]mark, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Seen reports whether id was applied and has not aged out.
func (w *Window) Seen(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	until, ok := w.deadline[id]
	return ok && !w.now().After(until)
}

// Add records id as applied.
func (w *Window) Add(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	until := now.Add(w.ttl)
	w.deadline[id] = until
	w.fifo = append(w.fifo, mark{id: id, deadline: until})
	w.evict(now)
}

// Len reports how many ids are currently tracked.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.deadline)
}

func (w *Window) evict(now time.Time) {
	for len(w.fifo) > 0 {
		head := w.fifo[0]
		if len(w.deadline) <= w.capacity && !now.After(head.deadline) {
			return
		}
		w.fifo = w.fifo[1:]
		// A re-added id has a later deadline; only drop the entry this mark owns.
		if w.deadline[head.id] == head.deadline {
			delete(w.deadline, head.id)
		}
	}
}
