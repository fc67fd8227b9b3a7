// Package visualizer renders machine documents as Mermaid state diagrams.
package visualizer

import (
	"errors"
	"fmt"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/statemachine"
)

// Visualizer errors.
var (
	ErrDocumentNil    = errors.New("document cannot be nil")
	ErrNoInitialState = errors.New("document must have an initial state")
	ErrBadDirection   = errors.New("direction must be TB, BT, LR or RL")
)

// GenerateMermaid converts a Document to a Mermaid state diagram.
func GenerateMermaid(doc *statemachine.Document) (string, error) {
	return GenerateMermaidWithOptions(doc, DefaultOptions())
}

// GenerateMermaidFromFile renders every document in a YAML file, one
// diagram per document, separated by blank lines.
func GenerateMermaidFromFile(path string, opts Options) (string, error) {
	docs, err := statemachine.LoadDocuments(path)
	if err != nil {
		return "", fmt.Errorf("failed to load documents: %w", err)
	}

	diagrams := make([]string, 0, len(docs))

	for _, doc := range docs {
		diagram, err := GenerateMermaidWithOptions(doc, opts)
		if err != nil {
			return "", fmt.Errorf("machine %s: %w", doc.Name, err)
		}

		diagrams = append(diagrams, diagram)
	}

	return strings.Join(diagrams, "\n"), nil
}

// GenerateMermaidWithOptions generates a Mermaid diagram with custom options.
// States and events are emitted in natural order so output is stable.
func GenerateMermaidWithOptions(doc *statemachine.Document, opts Options) (string, error) {
	if doc == nil {
		return "", ErrDocumentNil
	}

	if doc.Initial == "" {
		return "", ErrNoInitialState
	}

	switch opts.Direction {
	case "", "TB", "BT", "LR", "RL":
	default:
		return "", fmt.Errorf("%w: %q", ErrBadDirection, opts.Direction)
	}

	var sb strings.Builder

	if opts.Fenced {
		sb.WriteString("```mermaid\n")
	}

	sb.WriteString("stateDiagram-v2\n")

	if doc.Name != "" {
		fmt.Fprintf(&sb, "    %%%% %s\n", doc.Name)
	}

	if opts.Direction != "" {
		fmt.Fprintf(&sb, "    direction %s\n", opts.Direction)
	}

	fmt.Fprintf(&sb, "    [*] --> %s\n", doc.Initial)

	names := make([]string, 0, len(doc.States))
	for name := range doc.States {
		names = append(names, name)
	}

	natsort.Sort(names)

	for _, name := range names {
		state := doc.States[name]

		events := make([]string, 0, len(state.On))
		for event := range state.On {
			events = append(events, event)
		}

		natsort.Sort(events)

		for _, event := range events {
			fmt.Fprintf(&sb, "    %s --> %s: %s\n", name, state.On[event], event)
		}

		if len(events) == 0 {
			fmt.Fprintf(&sb, "    %s --> [*]\n", name)
		}

		if opts.ShowHooks {
			if note := hookNote(state); note != "" {
				fmt.Fprintf(&sb, "    note right of %s: %s\n", name, note)
			}
		}
	}

	if opts.Highlight != "" {
		sb.WriteString("\n")
		sb.WriteString("    classDef current fill:#fff9c4,stroke:#f57f17,stroke-width:3px\n")
		fmt.Fprintf(&sb, "    class %s current\n", opts.Highlight)
	}

	if opts.Fenced {
		sb.WriteString("```\n")
	}

	return sb.String(), nil
}

func hookNote(state statemachine.StateDocument) string {
	var parts []string

	if state.OnEnter != nil {
		parts = append(parts, "enter: "+hookLabel(state.OnEnter))
	}

	if state.OnExit != nil {
		parts = append(parts, "exit: "+hookLabel(state.OnExit))
	}

	return strings.Join(parts, ", ")
}

func hookLabel(hook *statemachine.HookConfig) string {
	if hook.Name != "" && hook.Name != hook.Type {
		return hook.Name + " (" + hook.Type + ")"
	}

	return hook.Type
}
