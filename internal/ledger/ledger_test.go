package ledger

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestLedger_AdmitsFirstObservation(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	assert.True(t, l.Admit("camera:active-use"))
}

func TestLedger_SuppressesWithinWindow(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	assert.True(t, l.Admit("microphone:active-use"))

	clock.Advance(500 * time.Millisecond)
	assert.False(t, l.Admit("microphone:active-use"), "repeat within window must be suppressed")

	clock.Advance(1400 * time.Millisecond)
	assert.False(t, l.Admit("microphone:active-use"), "1.9s after admission is still inside the window")

	clock.Advance(200 * time.Millisecond)
	assert.True(t, l.Admit("microphone:active-use"), "window elapsed, next observation admits")
}

func TestLedger_WindowRestartsOnAdmittedOnly(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	assert.True(t, l.Admit("location:accessed"))

	// A suppressed observation must not extend the window.
	clock.Advance(1500 * time.Millisecond)
	assert.False(t, l.Admit("location:accessed"))

	clock.Advance(600 * time.Millisecond) // 2.1s after the admitted emission
	assert.True(t, l.Admit("location:accessed"))
}

func TestLedger_KeysAreIndependent(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	assert.True(t, l.Admit("camera:active-use"))
	assert.True(t, l.Admit("camera:stopped"))
	assert.True(t, l.Admit("microphone:active-use"))
	assert.False(t, l.Admit("camera:active-use"))
}

func TestLedger_SweepBoundsSize(t *testing.T) {
	clock := newFakeClock()
	l := New(WithClock(clock.Now))

	// Many distinct keys spaced beyond the retention horizon: the sweep
	// run on each admission prunes everything older, so the ledger never
	// accumulates.
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("capability-%d:accessed", i)
		assert.True(t, l.Admit(key))
		assert.LessOrEqual(t, l.Len(), 2, "ledger must stay bounded")
		clock.Advance(DefaultRetention + time.Second)
	}
}

func TestLedger_RetentionOutlastsDebounce(t *testing.T) {
	assert.Greater(t, DefaultRetention, DefaultDebounce,
		"an entry must never be pruned while it could still suppress")
}

func TestLedger_CustomWindows(t *testing.T) {
	clock := newFakeClock()
	l := New(
		WithDebounce(100*time.Millisecond),
		WithRetention(time.Second),
		WithClock(clock.Now),
	)

	assert.True(t, l.Admit("notifications:shown"))
	assert.False(t, l.Admit("notifications:shown"))

	clock.Advance(150 * time.Millisecond)
	assert.True(t, l.Admit("notifications:shown"))
}

func TestLedger_ConcurrentAdmitSingleWinner(t *testing.T) {
	l := New()

	var wg sync.WaitGroup
	admitted := make(chan bool, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			admitted <- l.Admit("clipboard-read:accessed")
		}()
	}
	wg.Wait()
	close(admitted)

	wins := 0
	for ok := range admitted {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "a burst of identical observations yields exactly one admission")
}
