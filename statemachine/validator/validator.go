// Package validator lints declarative machine documents. Unlike
// Document.Validate, which stops at structural errors, it reports every
// problem it finds along with warnings about suspicious but legal shapes.
package validator

import (
	"fmt"
	"os"
	"strings"

	"facette.io/natsort"
	"github.com/amp-labs/amp-fsm/statemachine"
)

// Result contains the results of validating one document.
type Result struct {
	Machine  string
	Valid    bool
	Errors   []Issue
	Warnings []Issue
}

// Issue describes a single validation problem.
type Issue struct {
	Code     string   // Issue code like "UNKNOWN_TARGET", "UNREACHABLE_STATE"
	Message  string   // Human-readable message
	Location Location // Where the issue occurred
}

// Location identifies where an issue occurred.
type Location struct {
	File  string
	State string
	Event string
}

// Options controls a validation run.
type Options struct {
	// Factory, when set, is used to check that hook types exist.
	Factory *statemachine.HookFactory
	// Strict treats warnings as errors.
	Strict bool
	// Rules replaces DefaultRules when non-nil.
	Rules []Rule
}

// Validate checks doc against the default rules.
func Validate(doc *statemachine.Document) Result {
	return ValidateWithOptions(doc, Options{})
}

// ValidateWithRules checks doc against rules only.
func ValidateWithRules(doc *statemachine.Document, rules []Rule) Result {
	return ValidateWithOptions(doc, Options{Rules: rules})
}

// ValidateWithOptions checks doc as configured by opts.
func ValidateWithOptions(doc *statemachine.Document, opts Options) Result {
	rules := opts.Rules
	if rules == nil {
		rules = DefaultRules(opts.Factory)
	}

	result := Result{Machine: doc.Name}

	for _, rule := range rules {
		ruleResult := rule.Check(doc)
		result.Errors = append(result.Errors, ruleResult.Errors...)
		result.Warnings = append(result.Warnings, ruleResult.Warnings...)
	}

	if opts.Strict {
		result.Errors = append(result.Errors, result.Warnings...)
		result.Warnings = nil
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// ValidateFile decodes every document in a YAML file and validates each.
// The error is only set when the file cannot be read or parsed.
func ValidateFile(path string, opts Options) ([]Result, error) {
	file, err := os.Open(path) //nolint:gosec // Intentional path-based loading
	if err != nil {
		return nil, fmt.Errorf("failed to open document file %q: %w", path, err)
	}

	defer file.Close() //nolint:errcheck

	docs, err := statemachine.DecodeDocuments(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	results := make([]Result, 0, len(docs))

	for _, doc := range docs {
		result := ValidateWithOptions(doc, opts)

		for i := range result.Errors {
			result.Errors[i].Location.File = path
		}

		for i := range result.Warnings {
			result.Warnings[i].Location.File = path
		}

		results = append(results, result)
	}

	return results, nil
}

// HasErrors returns true if the result has any errors.
func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if the result has any warnings.
func (r Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// String returns a human-readable summary of the result.
func (r Result) String() string {
	var sb strings.Builder

	name := r.Machine
	if name == "" {
		name = "(unnamed)"
	}

	if r.Valid {
		fmt.Fprintf(&sb, "✓ %s is valid\n", name)
	} else {
		fmt.Fprintf(&sb, "✗ %s has %d error(s)\n", name, len(r.Errors))

		for _, issue := range r.Errors {
			writeIssue(&sb, issue)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(&sb, "⚠ %d warning(s):\n", len(r.Warnings))

		for _, issue := range r.Warnings {
			writeIssue(&sb, issue)
		}
	}

	return sb.String()
}

func writeIssue(sb *strings.Builder, issue Issue) {
	fmt.Fprintf(sb, "  [%s] %s", issue.Code, issue.Message)

	if issue.Location.State != "" {
		fmt.Fprintf(sb, " (state: %s)", issue.Location.State)
	}

	sb.WriteString("\n")
}

func sortedStates(doc *statemachine.Document) []string {
	names := make([]string, 0, len(doc.States))
	for name := range doc.States {
		names = append(names, name)
	}

	natsort.Sort(names)

	return names
}

func sortedEvents(on map[string]string) []string {
	events := make([]string, 0, len(on))
	for event := range on {
		events = append(events, event)
	}

	natsort.Sort(events)

	return events
}
