// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters

import (
	"fmt"
	"sort"
	"strings"

	"ooxml-mask/internal/redactors"
)

// FormatterOptions defines configuration options for formatters
type FormatterOptions struct {
	Verbose bool // Whether to list every part and each diagnostic's cause
	NoColor bool // Whether to disable colored output
}

// Failure is a document that could not be processed at all
type Failure struct {
	Path string
	Err  error
}

// Report is everything one run produced
type Report struct {
	RunID       string
	ToolVersion string

	Documents []*redactors.DocumentResult
	Failures  []Failure

	// RuleDiagnostics are InvalidPattern diagnostics raised once per run
	RuleDiagnostics []*redactors.RedactionError

	Stats redactors.RedactionStatsSnapshot
}

// HasDiagnostics reports whether any document, rule or failure needs attention
func (r *Report) HasDiagnostics() bool {
	if len(r.Failures) > 0 || len(r.RuleDiagnostics) > 0 {
		return true
	}
	for _, doc := range r.Documents {
		if doc.HasDiagnostics() {
			return true
		}
	}
	return false
}

// Formatter interface defines methods that all output formatters must implement
type Formatter interface {
	// Format renders the run report in the formatter's output format
	Format(report *Report, options FormatterOptions) (string, error)

	// Name returns the name of the formatter (e.g., "json", "text")
	Name() string

	// Description returns a brief description of what this formatter outputs
	Description() string

	// FileExtension returns the recommended file extension for this format (e.g., ".json", ".txt")
	FileExtension() string
}

// Registry holds all registered formatters
type Registry struct {
	formatters map[string]Formatter
}

// NewRegistry creates a new formatter registry
func NewRegistry() *Registry {
	return &Registry{
		formatters: make(map[string]Formatter),
	}
}

// Register adds a formatter to the registry
func (r *Registry) Register(formatter Formatter) {
	r.formatters[formatter.Name()] = formatter
}

// Get retrieves a formatter by name
func (r *Registry) Get(name string) (Formatter, bool) {
	formatter, exists := r.formatters[name]
	return formatter, exists
}

// List returns all registered formatter names in sorted order
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry
var DefaultRegistry = NewRegistry()

// Register is a convenience function to register a formatter with the default registry
func Register(formatter Formatter) {
	DefaultRegistry.Register(formatter)
}

// Get is a convenience function to get a formatter from the default registry
func Get(name string) (Formatter, bool) {
	return DefaultRegistry.Get(name)
}

// List is a convenience function to list all formatters in the default registry
func List() []string {
	return DefaultRegistry.List()
}

// Export renders report with the named formatter from the default registry
func Export(format string, report *Report, options FormatterOptions) (string, error) {
	formatter, exists := Get(format)
	if !exists {
		return "", fmt.Errorf("unsupported format '%s'. Available formats: %s", format, strings.Join(List(), ", "))
	}
	return formatter.Format(report, options)
}
