// Package modules implements the four feature panes of the advisor: disease
// detection, market prices, weather and farming tips.
//
// Every module is a request/render state machine. A request runs inside a
// loading bracket, carries a monotonic sequence number and only renders if it
// is still the latest request the module issued. Primary failures surface as
// one localized danger notification and leave the previous content in place.
// Secondary fetches enrich an already rendered result; their failures are
// logged and otherwise ignored.
package modules

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"cropadvisor/internal/feedback"
	"cropadvisor/internal/render"
	"cropadvisor/internal/types"
)

// ErrSuperseded is returned when a response arrived after a newer request
// was issued by the same module and was therefore discarded.
var ErrSuperseded = errors.New("response superseded by a newer request")

// Localizer resolves UI strings in the active language.
type Localizer interface {
	Translate(key string) string
	Translatef(key string, params map[string]string) string
}

// Deps are the collaborators shared by every module. The app shell builds
// them once and passes them to each constructor.
type Deps struct {
	Localizer Localizer
	Loading   *feedback.Loading
	Notifier  *feedback.Notifier
	Logger    *slog.Logger
}

// checked is satisfied by every backend response through the embedded
// types.Envelope.
type checked interface {
	Err(fallback string) error
}

// machine holds the state shared by every module.
type machine struct {
	name   string
	deps   Deps
	pane   *render.Pane
	logger *slog.Logger

	mu        sync.Mutex
	state     types.ModuleState
	seq       uint64
	activated bool
}

func newMachine(name string, deps Deps) *machine {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &machine{
		name:   name,
		deps:   deps,
		pane:   render.NewPane(name),
		logger: logger.With("module", name),
		state:  types.StateIdle,
	}
}

func (m *machine) t(key string) string {
	return m.deps.Localizer.Translate(key)
}

// State returns the current request/render state.
func (m *machine) State() types.ModuleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Pane returns the content area this module owns.
func (m *machine) Pane() *render.Pane {
	return m.pane
}

// firstActivation reports true exactly once.
func (m *machine) firstActivation() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.activated {
		return false
	}
	m.activated = true
	return true
}

// begin issues the next sequence number and moves to loading.
func (m *machine) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	m.state = types.StateLoading
	return m.seq
}

// commit settles request seq. It returns false without touching any state
// when a newer request has been issued since. On success draw runs while the
// machine lock is held so renders of concurrent requests cannot interleave.
func (m *machine) commit(seq uint64, err error, draw func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return false
	}
	if err != nil {
		m.state = types.StateErrored
		return true
	}
	if draw != nil {
		draw()
	}
	m.state = types.StateRendered
	return true
}

// apply runs draw for a follow-up of request seq if it is still current.
// The module state is left as is.
func (m *machine) apply(seq uint64, draw func()) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != m.seq {
		return false
	}
	draw()
	return true
}

// locked runs fn under the machine lock.
func (m *machine) locked(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

// fail reports a primary failure: the detail is logged, the user sees the
// generic localized message.
func (m *machine) fail(ctx context.Context, op string, err error) {
	m.logger.ErrorContext(ctx, "request failed",
		"op", op,
		"kind", types.KindOf(err),
		"error", err,
	)
	m.deps.Notifier.Danger(m.t("error_occurred"))
}

// primary runs call inside a loading bracket and commits the outcome under
// the request's sequence number. draw is only invoked for the latest request.
// The returned sequence number identifies the request for follow-ups.
func primary[R checked](
	ctx context.Context,
	m *machine,
	op string,
	loadingKey string,
	fallback string,
	call func(context.Context) (R, error),
	draw func(R),
) (uint64, error) {
	seq := m.begin()
	release := m.deps.Loading.Begin(m.t(loadingKey))
	defer release()

	resp, err := call(ctx)
	if err == nil {
		err = resp.Err(fallback)
	}

	current := m.commit(seq, err, func() { draw(resp) })
	if !current {
		m.logger.DebugContext(ctx, "discarding stale response", "op", op, "seq", seq)
		return seq, ErrSuperseded
	}
	if err != nil {
		m.fail(ctx, op, err)
		return seq, err
	}
	return seq, nil
}

// followUp is a user-triggered request that appends to the result of request
// seq. It shows loading and notifies on failure like a primary request but
// does not change the module state.
func followUp[R checked](
	ctx context.Context,
	m *machine,
	seq uint64,
	op string,
	loadingKey string,
	fallback string,
	call func(context.Context) (R, error),
	draw func(R),
) error {
	release := m.deps.Loading.Begin(m.t(loadingKey))
	defer release()

	resp, err := call(ctx)
	if err == nil {
		err = resp.Err(fallback)
	}
	if err != nil {
		m.fail(ctx, op, err)
		return err
	}
	if !m.apply(seq, func() { draw(resp) }) {
		m.logger.DebugContext(ctx, "discarding stale response", "op", op, "seq", seq)
		return ErrSuperseded
	}
	return nil
}

// secondary is a best-effort enrichment of request seq. Failures are logged
// and swallowed: no notification, no state change, the primary content stays.
func secondary[R checked](
	ctx context.Context,
	m *machine,
	seq uint64,
	op string,
	call func(context.Context) (R, error),
	draw func(R),
) {
	resp, err := call(ctx)
	if err == nil {
		err = resp.Err(op + " failed")
	}
	if err != nil {
		m.logger.WarnContext(ctx, "secondary fetch failed",
			"op", op,
			"kind", types.KindOf(err),
			"error", err,
		)
		return
	}
	if !m.apply(seq, func() { draw(resp) }) {
		m.logger.DebugContext(ctx, "discarding stale response", "op", op, "seq", seq)
	}
}
