package visualizer

// Options configures the visualization output.
type Options struct {
	// Direction controls diagram flow: "" leaves the Mermaid default,
	// otherwise "TB", "BT", "LR" or "RL".
	Direction string

	// Highlight marks one state, usually the machine's current state.
	Highlight string

	// ShowHooks adds a note listing each state's hook types.
	ShowHooks bool

	// Fenced wraps the diagram in a ```mermaid code fence.
	Fenced bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowHooks: true,
		Fenced:    true,
	}
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlight sets the state to highlight.
func (o Options) WithHighlight(state string) Options {
	o.Highlight = state

	return o
}

// WithShowHooks enables/disables hook notes.
func (o Options) WithShowHooks(show bool) Options {
	o.ShowHooks = show

	return o
}

// WithFenced enables/disables the markdown code fence.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
