// Package registry keeps named state machine instances.
//
// A Registry is created by the application and passed to whatever needs to
// create or look up machines; there is no package-level registry.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/statemachine"
)

var (
	// ErrDuplicateName is returned by Create when the name is already registered.
	ErrDuplicateName = errors.New("already exists")
	// ErrNotFound is returned when no machine is registered under a name.
	ErrNotFound = errors.New("not found")
	// ErrTypeMismatch is returned by Get when the registered machine has
	// different state or event types than requested.
	ErrTypeMismatch = errors.New("state machine type mismatch")
	// ErrNameRequired is returned by Create for an empty name.
	ErrNameRequired = errors.New("machine name is required")
)

// Registry owns a set of uniquely named machines. Machines are never
// removed once created.
type Registry struct {
	mu       sync.RWMutex
	machines map[string]statemachine.Instance
	opts     []statemachine.Option
}

// New creates an empty registry. The options are applied to every machine
// the registry creates, after the machine's name.
func New(opts ...statemachine.Option) *Registry {
	return &Registry{
		machines: make(map[string]statemachine.Instance),
		opts:     opts,
	}
}

// Create builds a machine from config and registers it under name. If name
// is taken, ErrDuplicateName is returned and the registered machine is left
// alone. Use Get to retrieve the new machine.
func Create[S, E ~string](r *Registry, name string, config *statemachine.Config[S, E]) error {
	if name == "" {
		return ErrNameRequired
	}

	opts := append([]statemachine.Option{statemachine.WithName(name)}, r.opts...)

	machine, err := statemachine.New(config, opts...)
	if err != nil {
		return fmt.Errorf("FSM %q: %w", name, err)
	}

	return r.add(name, machine)
}

// Get returns the machine registered under name. The result is shared:
// transitions and resets made through it are visible to later lookups.
func Get[S, E ~string](r *Registry, name string) (*statemachine.Machine[S, E], error) {
	instance, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	machine, ok := instance.(*statemachine.Machine[S, E])
	if !ok {
		return nil, fmt.Errorf("FSM %q: %w: registered as %T", name, ErrTypeMismatch, instance)
	}

	return machine, nil
}

// Lookup returns the type-erased machine registered under name.
func (r *Registry) Lookup(name string) (statemachine.Instance, error) {
	r.mu.RLock()
	instance, ok := r.machines[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("FSM %q %w", name, ErrNotFound)
	}

	return instance, nil
}

// ResetAll resets every registered machine to its initial state. No
// machine is removed and no hooks run.
func (r *Registry) ResetAll() {
	for _, instance := range r.snapshot() {
		instance.Reset()
	}
}

// Names returns the registered names in natural order.
func (r *Registry) Names() []string {
	r.mu.RLock()

	names := make([]string, 0, len(r.machines))
	for name := range r.machines {
		names = append(names, name)
	}

	r.mu.RUnlock()

	natsort.Sort(names)

	return names
}

// Len returns the number of registered machines.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.machines)
}

func (r *Registry) add(name string, instance statemachine.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.machines[name]; exists {
		return fmt.Errorf("FSM %q %w", name, ErrDuplicateName)
	}

	r.machines[name] = instance

	return nil
}

// snapshot returns the registered machines in name order.
func (r *Registry) snapshot() []statemachine.Instance {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	instances := make([]statemachine.Instance, 0, len(names))
	for _, name := range names {
		instances = append(instances, r.machines[name])
	}

	return instances
}
