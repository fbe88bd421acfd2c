package lifecycle

import (
	"sync"
	"time"
)

// Watch is the durable state of one continuous location watch. Ticks are
// counted against the record pointer itself, so an update that arrives before
// the provider-assigned id is known is never lost or mis-keyed.
type Watch struct {
	mu      sync.Mutex
	id      int64
	started time.Time
	updates int
	now     func() time.Time
}

// ID returns the provider-assigned watch id, zero until bound.
func (w *Watch) ID() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.id
}

// Tick records one successful position update and returns the cumulative
// update count and elapsed time since the first update.
func (w *Watch) Tick() (updates int, elapsed time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.updates == 0 {
		w.started = w.now()
	}
	w.updates++
	return w.updates, w.now().Sub(w.started)
}

// Snapshot returns the current counters without mutating them.
func (w *Watch) Snapshot() (updates int, elapsed time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.updates == 0 {
		return 0, 0
	}
	return w.updates, w.now().Sub(w.started)
}

// WatchSet associates provider-assigned watch ids with their records.
// Clearing an unknown or already-cleared id is a no-op, never a fault.
type WatchSet struct {
	mu      sync.Mutex
	watches map[int64]*Watch
	now     func() time.Time
}

// NewWatchSet creates an empty watch set using now as its time source.
// A nil now defaults to time.Now.
func NewWatchSet(now func() time.Time) *WatchSet {
	if now == nil {
		now = time.Now
	}
	return &WatchSet{watches: make(map[int64]*Watch), now: now}
}

// Begin allocates an unbound watch record. The caller captures the pointer in
// its position callback and binds the id once the provider returns it.
func (s *WatchSet) Begin() *Watch {
	return &Watch{now: s.now}
}

// Bind associates id with w so a later Clear can find it.
func (s *WatchSet) Bind(id int64, w *Watch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w.mu.Lock()
	w.id = id
	w.mu.Unlock()
	s.watches[id] = w
}

// Clear removes the watch for id and returns its final record, if tracked.
func (s *WatchSet) Clear(id int64) (*Watch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.watches[id]
	delete(s.watches, id)
	return w, ok
}

// Len reports how many watches are currently tracked.
func (s *WatchSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watches)
}
