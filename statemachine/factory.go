package statemachine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amp-labs/amp-fsm/envutil"
	"github.com/amp-labs/amp-fsm/logger"
)

// ErrHookFailed is returned by hooks of type "fail".
var ErrHookFailed = errors.New("hook failed")

// HookConfig references a hook from a declarative document.
// Type selects the builder; Name identifies the hook in logs.
type HookConfig struct {
	Type       string         `json:"type"                 yaml:"type"`
	Name       string         `json:"name,omitempty"       yaml:"name,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// HookBuilder creates a hook from configuration.
// The factory parameter allows building nested hooks with custom builders.
type HookBuilder func(factory *HookFactory, name string, params map[string]any) (Hook, error)

// HookFactory creates hooks from configuration.
// Applications can register custom hook builders to extend the built-in set.
type HookFactory struct {
	builders map[string]HookBuilder
}

// NewHookFactory creates a new hook factory with default builders.
func NewHookFactory() *HookFactory {
	factory := &HookFactory{
		builders: make(map[string]HookBuilder),
	}

	factory.Register("noop", noopHookBuilder)
	factory.Register("log", logHookBuilder)
	factory.Register("delay", delayHookBuilder)
	factory.Register("fail", failHookBuilder)
	factory.Register("sequence", sequenceHookBuilder)

	return factory
}

// Register registers a custom hook builder, replacing any builder of the same type.
func (f *HookFactory) Register(hookType string, builder HookBuilder) {
	f.builders[hookType] = builder
}

// Has reports whether a builder is registered for hookType.
func (f *HookFactory) Has(hookType string) bool {
	_, ok := f.builders[hookType]

	return ok
}

// Create creates a hook from configuration.
func (f *HookFactory) Create(config HookConfig) (Hook, error) {
	if config.Type == "" {
		return nil, ErrHookTypeRequired
	}

	builder, ok := f.builders[config.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHookType, config.Type)
	}

	name := config.Name
	if name == "" {
		name = config.Type
	}

	return builder(f, name, config.Parameters)
}

func noopHookBuilder(_ *HookFactory, _ string, _ map[string]any) (Hook, error) {
	return func(context.Context) error {
		return nil
	}, nil
}

// logHookBuilder writes a message through logger.Get.
// Parameters: message (string), level (debug, info, warn, error; default info).
func logHookBuilder(_ *HookFactory, name string, params map[string]any) (Hook, error) {
	p := Params(params)

	message, err := p.String("message", "hook "+name)
	if err != nil {
		return nil, err
	}

	levelName, err := p.String("level", "info")
	if err != nil {
		return nil, err
	}

	level, err := envutil.ParseSlogLevel(levelName)
	if err != nil {
		return nil, fmt.Errorf("%w: level: %w", ErrInvalidHookParameter, err)
	}

	return func(ctx context.Context) error {
		logger.Get(ctx).Log(ctx, level, message, "hook", name)

		return nil
	}, nil
}

// delayHookBuilder waits for a fixed duration, or until the context is done.
// Parameters: duration (duration string or seconds, required).
func delayHookBuilder(_ *HookFactory, _ string, params map[string]any) (Hook, error) {
	duration, err := Params(params).Duration("duration", true, 0)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context) error {
		timer := time.NewTimer(duration)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}, nil
}

// failHookBuilder always fails. Useful for exercising hook failure paths.
// Parameters: message (string).
func failHookBuilder(_ *HookFactory, name string, params map[string]any) (Hook, error) {
	message, err := Params(params).String("message", name)
	if err != nil {
		return nil, err
	}

	return func(context.Context) error {
		return fmt.Errorf("%w: %s", ErrHookFailed, message)
	}, nil
}

// sequenceHookBuilder runs nested hooks in order and stops at the first error.
// Parameters: hooks (list of {type, name, parameters}).
func sequenceHookBuilder(factory *HookFactory, _ string, params map[string]any) (Hook, error) {
	configs, err := Params(params).HookConfigs("hooks")
	if err != nil {
		return nil, err
	}

	hooks := make([]Hook, 0, len(configs))

	for idx, config := range configs {
		hook, err := factory.Create(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create hook %d: %w", idx, err)
		}

		hooks = append(hooks, hook)
	}

	return func(ctx context.Context) error {
		for _, hook := range hooks {
			err := hook(ctx)
			if err != nil {
				return err
			}
		}

		return nil
	}, nil
}
