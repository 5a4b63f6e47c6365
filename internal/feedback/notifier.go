package feedback

import (
	"sync"
	"time"

	"cropadvisor/internal/types"

	"github.com/google/uuid"
)

// DefaultTTL is how long a notification stays up without user action.
const DefaultTTL = 5 * time.Second

// Notification is one transient message.
type Notification struct {
	ID        string
	Level     types.NotificationLevel
	Message   string
	CreatedAt time.Time
}

// Timer is the subset of *time.Timer the notifier needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. It matches time.AfterFunc so tests can
// substitute a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithTTL overrides the auto-dismiss interval.
func WithTTL(ttl time.Duration) NotifierOption {
	return func(n *Notifier) { n.ttl = ttl }
}

// WithAfterFunc overrides the timer factory. Intended for tests.
func WithAfterFunc(fn AfterFunc) NotifierOption {
	return func(n *Notifier) { n.afterFunc = fn }
}

// WithNow overrides the clock used for CreatedAt. Intended for tests.
func WithNow(fn func() time.Time) NotifierOption {
	return func(n *Notifier) { n.now = fn }
}

// OnShow registers a callback invoked for every new notification.
func OnShow(fn func(Notification)) NotifierOption {
	return func(n *Notifier) { n.onShow = fn }
}

// OnDismiss registers a callback invoked when a notification goes away,
// whether by timeout or by Dismiss.
func OnDismiss(fn func(Notification)) NotifierOption {
	return func(n *Notifier) { n.onDismiss = fn }
}

type activeNotification struct {
	Notification
	timer Timer
}

// Notifier shows stacking notifications that auto-dismiss after a fixed
// TTL. There is no queue limit.
type Notifier struct {
	mu        sync.Mutex
	active    []*activeNotification
	ttl       time.Duration
	afterFunc AfterFunc
	now       func() time.Time
	onShow    func(Notification)
	onDismiss func(Notification)
}

// NewNotifier creates a Notifier with the default 5 second TTL.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{
		ttl:       DefaultTTL,
		afterFunc: realAfterFunc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify shows message at level and returns the notification ID.
func (n *Notifier) Notify(level types.NotificationLevel, message string) string {
	note := Notification{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: n.now(),
	}

	n.mu.Lock()
	entry := &activeNotification{Notification: note}
	n.active = append(n.active, entry)
	n.mu.Unlock()

	if n.onShow != nil {
		n.onShow(note)
	}

	timer := n.afterFunc(n.ttl, func() { n.Dismiss(note.ID) })
	n.mu.Lock()
	// The timer may already have fired and removed the entry.
	entry.timer = timer
	n.mu.Unlock()

	return note.ID
}

// Info, Success, Warning and Danger are shorthands for Notify.
func (n *Notifier) Info(message string) string    { return n.Notify(types.LevelInfo, message) }
func (n *Notifier) Success(message string) string { return n.Notify(types.LevelSuccess, message) }
func (n *Notifier) Warning(message string) string { return n.Notify(types.LevelWarning, message) }
func (n *Notifier) Danger(message string) string  { return n.Notify(types.LevelDanger, message) }

// Dismiss removes the notification with id. It reports whether the
// notification was still active.
func (n *Notifier) Dismiss(id string) bool {
	n.mu.Lock()
	var (
		removed *activeNotification
		timer   Timer
	)
	for i, entry := range n.active {
		if entry.ID == id {
			removed, timer = entry, entry.timer
			n.active = append(n.active[:i], n.active[i+1:]...)
			break
		}
	}
	n.mu.Unlock()

	if removed == nil {
		return false
	}
	if timer != nil {
		timer.Stop()
	}
	if n.onDismiss != nil {
		n.onDismiss(removed.Notification)
	}
	return true
}

// Active returns the currently shown notifications, oldest first.
func (n *Notifier) Active() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.active))
	for i, entry := range n.active {
		out[i] = entry.Notification
	}
	return out
}
