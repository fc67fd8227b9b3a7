package statemachine

// Builder provides a fluent API for constructing machine configurations.
type Builder[S, E ~string] struct {
	config *Config[S, E]
}

// NewBuilder creates a builder for a machine starting in initial.
func NewBuilder[S, E ~string](initial S) *Builder[S, E] {
	return &Builder[S, E]{
		config: &Config[S, E]{
			Initial: initial,
			States:  make(map[S]StateDefinition[S, E]),
		},
	}
}

// State declares a state. States referenced by Transition, OnEnter or
// OnExit are declared implicitly, so this is only needed for states that
// have neither hooks nor outgoing events.
func (b *Builder[S, E]) State(state S) *Builder[S, E] {
	b.config.States[state] = b.config.States[state]

	return b
}

// Transition maps event to the destination state to while in from.
func (b *Builder[S, E]) Transition(from S, event E, to S) *Builder[S, E] {
	def := b.config.States[from]
	if def.On == nil {
		def.On = make(map[E]S)
	}

	def.On[event] = to
	b.config.States[from] = def

	return b
}

// OnEnter sets the hook run when the machine enters state.
func (b *Builder[S, E]) OnEnter(state S, hook Hook) *Builder[S, E] {
	def := b.config.States[state]
	def.OnEnter = hook
	b.config.States[state] = def

	return b
}

// OnExit sets the hook run when the machine leaves state.
func (b *Builder[S, E]) OnExit(state S, hook Hook) *Builder[S, E] {
	def := b.config.States[state]
	def.OnExit = hook
	b.config.States[state] = def

	return b
}

// Build validates the configuration and returns it.
func (b *Builder[S, E]) Build() (*Config[S, E], error) {
	err := b.config.Validate()
	if err != nil {
		return nil, err
	}

	return b.config, nil
}

// Machine builds the configuration and a machine from it.
func (b *Builder[S, E]) Machine(opts ...Option) (*Machine[S, E], error) {
	config, err := b.Build()
	if err != nil {
		return nil, err
	}

	return New(config, opts...)
}
