package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Model is the finished entity graph of one introspection run.
// RunID correlates log lines and is never serialized, so equal catalogs write equal bytes.
type Model struct {
	RunID    uuid.UUID `json:"-" yaml:"-"`
	Dialect  string    `json:"dialect" yaml:"dialect"`
	Entities []*Entity `json:"entities" yaml:"entities"`
}

// FindEntity returns the entity with the given name, or nil.
func (m *Model) FindEntity(name string) *Entity {
	return FindEntity(m.Entities, name)
}

// FindEntity returns the entity with the given name from entities, or nil.
func FindEntity(entities []*Entity, name string) *Entity {
	for _, e := range entities {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Diagnostic kinds.
const (
	DiagnosticUnrecognizedType    = "unrecognized_type"
	DiagnosticDanglingRelation    = "dangling_relation"
	DiagnosticCompositeKeyReduced = "composite_key_reduced"
)

// Diagnostic severities.
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Diagnostic is a recoverable condition met while building the model.
// The affected column or relation is left out; the rest of the model is unaffected.
type Diagnostic struct {
	Kind         string `json:"kind" yaml:"kind"`
	Severity     string `json:"severity" yaml:"severity"`
	Table        string `json:"table" yaml:"table"`
	Column       string `json:"column,omitempty" yaml:"column,omitempty"`
	RelatedTable string `json:"related_table,omitempty" yaml:"related_table,omitempty"`
	Constraint   string `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Message      string `json:"message" yaml:"message"`
	Err          error  `json:"-" yaml:"-"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Result pairs a model with the diagnostics collected while building it.
type Result struct {
	Model       *Model       `json:"model" yaml:"model"`
	Diagnostics []Diagnostic `json:"diagnostics" yaml:"diagnostics"`
}

// DiagnosticsOfKind returns the diagnostics with the given kind.
func (r *Result) DiagnosticsOfKind(kind string) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}
