package statemachine

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Hook phases, used as metric and span labels.
const (
	phaseExit  = "exit"
	phaseEnter = "enter"
)

// Metric outcome constants.
const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

// Machine holds the current state of one configured state machine and
// performs validated transitions between its states.
//
// Send calls are serialized, so at most one transition is in flight. Hooks
// run without the state lock held and may read the machine (State, Previous,
// Is, AvailableEvents). A hook must not call Send on its own machine.
type Machine[S, E ~string] struct {
	config *Config[S, E]
	name   string

	sendMu sync.Mutex

	mu          sync.RWMutex
	current     S
	previous    S
	hasPrevious bool

	logger  Logger
	metrics *Metrics
}

type options struct {
	name    string
	logger  Logger
	metrics *Metrics
}

// Option configures a Machine.
type Option func(*options)

// WithName sets the name reported in logs, metrics and spans.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger notified about transitions. Machines do not
// log anything unless a logger is configured.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics the machine records into.
func WithMetrics(metrics *Metrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// New creates a machine positioned at the configuration's initial state.
// The initial state's OnEnter hook is not run.
func New[S, E ~string](config *Config[S, E], opts ...Option) (*Machine[S, E], error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Machine[S, E]{
		config:  config,
		name:    o.name,
		current: config.Initial,
		logger:  o.logger,
		metrics: o.metrics,
	}, nil
}

// MustNew is like New but panics if the configuration is invalid.
func MustNew[S, E ~string](config *Config[S, E], opts ...Option) *Machine[S, E] {
	m, err := New(config, opts...)
	if err != nil {
		panic(err)
	}

	return m
}

// Name returns the machine's name, or an empty string if it has none.
func (m *Machine[S, E]) Name() string {
	return m.name
}

// Config returns the configuration the machine was built from.
func (m *Machine[S, E]) Config() *Config[S, E] {
	return m.config
}

// State returns the current state.
func (m *Machine[S, E]) State() S {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current
}

// Previous returns the state the machine was in before the last transition
// or reset. The boolean is false until one of those has happened.
func (m *Machine[S, E]) Previous() (S, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.previous, m.hasPrevious
}

// Is reports whether the machine is currently in state.
func (m *Machine[S, E]) Is(state S) bool {
	return m.State() == state
}

// AvailableEvents returns the events accepted by the current state, in
// natural sort order.
func (m *Machine[S, E]) AvailableEvents() []E {
	def := m.config.States[m.State()]

	events := make([]E, 0, len(def.On))
	for event := range def.On {
		events = append(events, event)
	}

	sortNatural(events)

	return events
}

// Send applies event to the current state.
//
// If the current state has no destination for event, a *TransitionError
// matching ErrInvalidTransition is returned and nothing changes. Otherwise
// the current state's OnExit hook runs, the state changes, and then the
// destination's OnEnter hook runs. Hook errors are returned unchanged. A
// failing OnExit leaves the machine where it was; a failing OnEnter leaves
// it in the destination state.
//
// Send does not abort a hook that is already running. A context that is
// done before Send starts is reported without changing anything.
func (m *Machine[S, E]) Send(ctx context.Context, event E) (err error) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	err = ctx.Err()
	if err != nil {
		return err
	}

	from := m.State()

	ctx, span := startSendSpan(ctx, m.name, string(from), string(event))
	defer func() {
		finishSpan(span, err)
	}()

	source := m.config.States[from]

	to, ok := source.On[event]
	if !ok {
		m.transitionRejected(ctx, from, event)

		return invalidTransition(string(from), string(event))
	}

	destination, ok := m.config.States[to]
	if !ok {
		return WrapStateError(string(to), ErrStateNotFound)
	}

	err = m.runHook(ctx, from, phaseExit, source.OnExit)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.previous = from
	m.hasPrevious = true
	m.current = to
	m.mu.Unlock()

	m.transitionExecuted(ctx, from, event, to)

	return m.runHook(ctx, to, phaseEnter, destination.OnEnter)
}

// Reset moves the machine straight back to the initial state without
// running any hooks. The state being left becomes the previous state.
//
// Reset must not race with an in-flight Send; the resulting order is undefined.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	from := m.current
	m.previous = from
	m.hasPrevious = true
	m.current = m.config.Initial
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.resetsTotal.WithLabelValues(sanitizeMachine(m.name)).Inc()
	}

	if m.logger != nil {
		m.logger.MachineReset(context.Background(), m.name, string(from), string(m.config.Initial))
	}
}

// Current implements Instance.
func (m *Machine[S, E]) Current() string {
	return string(m.State())
}

// Last implements Instance.
func (m *Machine[S, E]) Last() (string, bool) {
	prev, ok := m.Previous()

	return string(prev), ok
}

// Events implements Instance.
func (m *Machine[S, E]) Events() []string {
	events := m.AvailableEvents()

	out := make([]string, len(events))
	for i, event := range events {
		out[i] = string(event)
	}

	return out
}

// Fire implements Instance.
func (m *Machine[S, E]) Fire(ctx context.Context, event string) error {
	return m.Send(ctx, E(event))
}

// runHook runs a single hook and reports it. A nil hook is a no-op.
func (m *Machine[S, E]) runHook(ctx context.Context, state S, phase string, hook Hook) error {
	if hook == nil {
		return nil
	}

	hookCtx, span := startHookSpan(ctx, m.name, string(state), phase)

	start := time.Now()
	err := hook(hookCtx)
	elapsed := time.Since(start)

	finishSpan(span, err)

	if m.metrics != nil {
		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeError
		}

		m.metrics.hookDuration.WithLabelValues(
			sanitizeMachine(m.name),
			string(state),
			phase,
			outcome,
		).Observe(elapsed.Seconds())
	}

	if m.logger != nil {
		switch phase {
		case phaseExit:
			m.logger.StateExited(ctx, m.name, string(state), elapsed, err)
		case phaseEnter:
			m.logger.StateEntered(ctx, m.name, string(state), elapsed, err)
		}
	}

	return err
}

func (m *Machine[S, E]) transitionRejected(ctx context.Context, from S, event E) {
	if m.metrics != nil {
		m.metrics.rejectedTotal.WithLabelValues(sanitizeMachine(m.name), string(from), string(event)).Inc()
	}

	if m.logger != nil {
		m.logger.TransitionRejected(ctx, m.name, string(from), string(event))
	}
}

func (m *Machine[S, E]) transitionExecuted(ctx context.Context, from S, event E, to S) {
	if m.metrics != nil {
		m.metrics.transitionsTotal.WithLabelValues(
			sanitizeMachine(m.name),
			string(from),
			string(event),
			string(to),
		).Inc()
	}

	if m.logger != nil {
		m.logger.TransitionExecuted(ctx, m.name, string(from), string(event), string(to))
	}
}
