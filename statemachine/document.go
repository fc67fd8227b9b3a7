package statemachine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Document is the declarative form of a machine configuration. Hooks are
// referenced by HookConfig and resolved through a HookFactory.
type Document struct {
	Name    string                   `json:"name"    yaml:"name"`
	Initial string                   `json:"initial" yaml:"initial"`
	States  map[string]StateDocument `json:"states"  yaml:"states"`
}

// StateDocument is the declarative form of a StateDefinition.
type StateDocument struct {
	On      map[string]string `json:"on,omitempty"      yaml:"on,omitempty"`
	OnEnter *HookConfig       `json:"onEnter,omitempty" yaml:"onEnter,omitempty"`
	OnExit  *HookConfig       `json:"onExit,omitempty"  yaml:"onExit,omitempty"`
}

// LoadDocuments reads every document in a YAML file. Documents are
// separated by "---".
func LoadDocuments(path string) ([]*Document, error) {
	file, err := os.Open(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to open document file %q: %w", path, err)
	}

	defer file.Close() //nolint:errcheck

	docs, err := ReadDocuments(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return docs, nil
}

// ReadDocuments decodes and validates a stream of YAML documents.
func ReadDocuments(r io.Reader) ([]*Document, error) {
	docs, err := DecodeDocuments(r)
	if err != nil {
		return nil, err
	}

	for idx, doc := range docs {
		err = doc.Validate()
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", idx, err)
		}
	}

	return docs, nil
}

// DecodeDocuments decodes a stream of YAML documents without validating
// them. Empty documents are skipped. Unknown fields are rejected.
func DecodeDocuments(r io.Reader) ([]*Document, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var docs []*Document

	for {
		var doc Document

		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("failed to parse YAML document %d: %w", len(docs), err)
		}

		if doc.Name == "" && doc.Initial == "" && len(doc.States) == 0 {
			continue
		}

		docs = append(docs, &doc)
	}

	return docs, nil
}

// LoadDocumentFromBytes loads a single document from YAML bytes.
func LoadDocumentFromBytes(data []byte) (*Document, error) {
	var doc Document

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	err = doc.Validate()
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// LoadDocumentFromFS loads a single document from a filesystem such as embed.FS.
func LoadDocumentFromFS(fsys fs.FS, path string) (*Document, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document from FS: %w", err)
	}

	return LoadDocumentFromBytes(data)
}

// Validate checks the document's structure. Hook references are not
// resolved here; BuildConfig reports unknown hook types.
func (d *Document) Validate() error {
	if d.Name == "" {
		return ErrDocumentNameRequired
	}

	err := d.skeleton().Validate()
	if err != nil {
		return fmt.Errorf("machine %s: %w", d.Name, err)
	}

	return nil
}

// skeleton converts the document into a configuration without hooks.
func (d *Document) skeleton() *Config[string, string] {
	config := &Config[string, string]{
		Initial: d.Initial,
		States:  make(map[string]StateDefinition[string, string], len(d.States)),
	}

	for name, state := range d.States {
		config.States[name] = StateDefinition[string, string]{On: state.On}
	}

	return config
}

// BuildConfig converts a document into a configuration, creating hooks
// through factory. If factory is nil, a new default factory is used.
func BuildConfig[S, E ~string](doc *Document, factory *HookFactory) (*Config[S, E], error) {
	err := doc.Validate()
	if err != nil {
		return nil, err
	}

	if factory == nil {
		factory = NewHookFactory()
	}

	config := &Config[S, E]{
		Initial: S(doc.Initial),
		States:  make(map[S]StateDefinition[S, E], len(doc.States)),
	}

	for name, state := range doc.States {
		var def StateDefinition[S, E]

		if len(state.On) > 0 {
			def.On = make(map[E]S, len(state.On))
			for event, target := range state.On {
				def.On[E(event)] = S(target)
			}
		}

		def.OnEnter, err = buildHook(factory, state.OnEnter)
		if err != nil {
			return nil, fmt.Errorf("machine %s, state %s, onEnter: %w", doc.Name, name, err)
		}

		def.OnExit, err = buildHook(factory, state.OnExit)
		if err != nil {
			return nil, fmt.Errorf("machine %s, state %s, onExit: %w", doc.Name, name, err)
		}

		config.States[S(name)] = def
	}

	return config, nil
}

func buildHook(factory *HookFactory, config *HookConfig) (Hook, error) {
	if config == nil {
		return nil, nil //nolint:nilnil
	}

	return factory.Create(*config)
}
