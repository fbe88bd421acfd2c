// Package ledger implements the suppression ledger: a coarse per-key rate
// limiter that debounces repeated capability observations.
package ledger

import (
	"sync"
	"time"
)

const (
	// DefaultDebounce is how long after an admitted emission identical
	// observations for the same key are suppressed.
	DefaultDebounce = 2 * time.Second

	// DefaultRetention is how long a ledger entry survives before the sweep
	// prunes it. Longer than the debounce window so an entry is never pruned
	// while it could still suppress.
	DefaultRetention = 10 * time.Second
)

// Ledger records the last admitted emission instant per observation key.
// A burst of identical observations yields at most one admission per debounce
// window; the window restarts only on an admitted emission, not on every
// observation. Safe for concurrent use.
type Ledger struct {
	mu        sync.Mutex
	last      map[string]time.Time
	debounce  time.Duration
	retention time.Duration
	now       func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithDebounce overrides the suppression window.
func WithDebounce(d time.Duration) Option {
	return func(l *Ledger) { l.debounce = d }
}

// WithRetention overrides the entry retention horizon.
func WithRetention(d time.Duration) Option {
	return func(l *Ledger) { l.retention = d }
}

// WithClock overrides the time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates an empty ledger with the default windows.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		last:      make(map[string]time.Time),
		debounce:  DefaultDebounce,
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit decides whether an observation for key may be emitted now.
// Suppressed observations are dropped entirely, never queued or merged.
// Every call sweeps stale entries so the ledger stays bounded under
// sustained traffic with many distinct keys.
func (l *Ledger) Admit(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	defer l.sweepLocked(now)

	if last, ok := l.last[key]; ok && now.Sub(last) < l.debounce {
		return false
	}

	l.last[key] = now
	return true
}

// sweepLocked prunes entries older than the retention horizon.
func (l *Ledger) sweepLocked(now time.Time) {
	for key, last := range l.last {
		if now.Sub(last) > l.retention {
			delete(l.last, key)
		}
	}
}

// Len reports the number of live ledger entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.last)
}
