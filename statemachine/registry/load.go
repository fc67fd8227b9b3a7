package registry

import (
	"github.com/amp-labs/amp-fsm/statemachine"
)

// CreateFromDocument builds a string-typed machine from doc and registers it
// under the document's name.
func (r *Registry) CreateFromDocument(doc *statemachine.Document, factory *statemachine.HookFactory) error {
	config, err := statemachine.BuildConfig[string, string](doc, factory)
	if err != nil {
		return err
	}

	return Create(r, doc.Name, config)
}

// Load registers every document, stopping at the first failure. Machines
// registered before the failure stay registered.
func (r *Registry) Load(docs []*statemachine.Document, factory *statemachine.HookFactory) error {
	if factory == nil {
		factory = statemachine.NewHookFactory()
	}

	for _, doc := range docs {
		err := r.CreateFromDocument(doc, factory)
		if err != nil {
			return err
		}
	}

	return nil
}
