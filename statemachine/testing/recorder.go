// Package testing provides helpers for testing code built on state machines:
// a hook recorder, matchers over machine instances, fixtures and scenarios.
package testing

import (
	"context"
	"slices"
	"sync"

	"github.com/amp-labs/amp-fsm/statemachine"
	"go.uber.org/atomic"
)

// Recorder hands out hooks that record their label each time they run.
// It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	calls  []string
	count  atomic.Int64
	failed atomic.Int64
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Hook returns a hook that records label and succeeds.
func (r *Recorder) Hook(label string) statemachine.Hook {
	return func(context.Context) error {
		r.record(label)

		return nil
	}
}

// FailingHook returns a hook that records label and then returns err.
func (r *Recorder) FailingHook(label string, err error) statemachine.Hook {
	return func(context.Context) error {
		r.record(label)
		r.failed.Inc()

		return err
	}
}

// Wrap returns a hook that records label and then runs hook.
func (r *Recorder) Wrap(label string, hook statemachine.Hook) statemachine.Hook {
	return func(ctx context.Context) error {
		r.record(label)

		if hook == nil {
			return nil
		}

		err := hook(ctx)
		if err != nil {
			r.failed.Inc()
		}

		return err
	}
}

func (r *Recorder) record(label string) {
	r.mu.Lock()
	r.calls = append(r.calls, label)
	r.mu.Unlock()

	r.count.Inc()
}

// Calls returns the recorded labels in call order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.calls)
}

// Count returns how many hooks have run.
func (r *Recorder) Count() int {
	return int(r.count.Load())
}

// Failures returns how many hooks returned an error.
func (r *Recorder) Failures() int {
	return int(r.failed.Load())
}

// Clear forgets everything recorded so far.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()

	r.count.Store(0)
	r.failed.Store(0)
}
