package memo

import "sync"

// Tracker counts lookup outcomes for one session.
type Tracker struct {
	mu    sync.Mutex
	hits  int
	total int
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Record notes one lookup outcome.
func (t *Tracker) Record(hit bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total++
	if hit {
		t.hits++
	}
}

// Counts returns the hit count and the total request count.
func (t *Tracker) Counts() (hits, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hits, t.total
}
