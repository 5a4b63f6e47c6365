// Package feedback provides the transient user feedback surfaces shared by
// every feature module: a single loading indicator and stacking
// notifications.
package feedback

import "sync"

// LoadingListener observes indicator transitions.
type LoadingListener func(visible bool, message string)

// Loading is the single modal-style loading indicator. It is reference
// counted: overlapping requests keep it visible until the last one settles.
type Loading struct {
	mu       sync.Mutex
	depth    int
	message  string
	listener LoadingListener
}

// NewLoading returns a hidden indicator. listener may be nil.
func NewLoading(listener LoadingListener) *Loading {
	return &Loading{listener: listener}
}

// Begin shows the indicator with message and returns the function that
// releases this hold. The release is idempotent, so callers can
// `defer release()` and still release early.
func (l *Loading) Begin(message string) (release func()) {
	l.mu.Lock()
	l.depth++
	l.message = message
	l.notify(true, message)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(l.end)
	}
}

func (l *Loading) end() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.depth == 0 {
		return
	}
	l.depth--
	if l.depth == 0 {
		l.message = ""
		l.notify(false, "")
	}
}

// notify must be called with mu held so transitions reach the listener in
// order.
func (l *Loading) notify(visible bool, message string) {
	if l.listener != nil {
		l.listener(visible, message)
	}
}

// Visible reports whether any hold is outstanding.
func (l *Loading) Visible() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.depth > 0
}

// Message returns the text of the most recent Begin while visible.
func (l *Loading) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.message
}
