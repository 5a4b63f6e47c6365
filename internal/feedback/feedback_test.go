package feedback

import (
	"sync"
	"testing"
	"time"

	"cropadvisor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock collects scheduled callbacks so tests can fire them on demand.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{d: d, f: f}
	c.pending = append(c.pending, t)
	return t
}

// fireAll runs every timer that has not been stopped.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.f()
		}
	}
}

func TestLoading_BracketsAndReleasesOnce(t *testing.T) {
	var transitions []bool
	l := NewLoading(func(visible bool, _ string) { transitions = append(transitions, visible) })

	assert.False(t, l.Visible())

	release := l.Begin("Fetching weather data...")
	assert.True(t, l.Visible())
	assert.Equal(t, "Fetching weather data...", l.Message())

	release()
	release() // idempotent
	assert.False(t, l.Visible())
	assert.Empty(t, l.Message())
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestLoading_OverlappingHolds(t *testing.T) {
	l := NewLoading(nil)

	first := l.Begin("Fetching market prices...")
	second := l.Begin("Fetching market prices...")
	first()
	assert.True(t, l.Visible(), "second request still pending")
	second()
	assert.False(t, l.Visible())
}

func TestLoading_ReleasedOnPanicPath(t *testing.T) {
	l := NewLoading(nil)

	func() {
		defer func() { _ = recover() }()
		release := l.Begin("Analyzing image for diseases...")
		defer release()
		panic("boom")
	}()

	assert.False(t, l.Visible())
}

func TestNotifier_AutoDismissAfterTTL(t *testing.T) {
	clock := &manualClock{}
	var dismissed []string
	n := NewNotifier(
		WithAfterFunc(clock.AfterFunc),
		OnDismiss(func(note Notification) { dismissed = append(dismissed, note.ID) }),
	)

	id := n.Danger("An error occurred. Please try again.")
	require.Len(t, n.Active(), 1)
	assert.Equal(t, types.LevelDanger, n.Active()[0].Level)
	require.Len(t, clock.pending, 1)
	assert.Equal(t, 5*time.Second, clock.pending[0].d)

	clock.fireAll()
	assert.Empty(t, n.Active())
	assert.Equal(t, []string{id}, dismissed)
}

func TestNotifier_ExplicitDismissStopsTimer(t *testing.T) {
	clock := &manualClock{}
	n := NewNotifier(WithAfterFunc(clock.AfterFunc))

	id := n.Info("Image selected successfully!")
	timer := clock.pending[0]

	assert.True(t, n.Dismiss(id))
	assert.True(t, timer.stopped)
	assert.False(t, n.Dismiss(id))
	assert.Empty(t, n.Active())
}

func TestNotifier_StacksWithoutLimit(t *testing.T) {
	clock := &manualClock{}
	var shown int
	n := NewNotifier(WithAfterFunc(clock.AfterFunc), WithTTL(time.Second), OnShow(func(Notification) { shown++ }))

	for i := 0; i < 50; i++ {
		n.Warning("Please select an image first")
	}
	assert.Len(t, n.Active(), 50)
	assert.Equal(t, 50, shown)
	assert.Equal(t, time.Second, clock.pending[0].d)

	clock.fireAll()
	assert.Empty(t, n.Active())
}

func TestNotifier_RealTimerDismisses(t *testing.T) {
	n := NewNotifier(WithTTL(10 * time.Millisecond))
	n.Success("ok")

	assert.Eventually(t, func() bool { return len(n.Active()) == 0 }, time.Second, 5*time.Millisecond)
}
