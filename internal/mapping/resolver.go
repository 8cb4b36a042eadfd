package mapping

import (
	"fmt"
	"strings"

	"github.com/winback/message-service/internal/types"
)

// ConfigError means the run cannot proceed at all: a required field has
// no column bound to it. It is fatal, unlike per-row errors.
type ConfigError struct {
	Missing []types.TargetField
	Columns []string
}

func (e *ConfigError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return fmt.Sprintf("required columns not found: %s (available: %s)",
		strings.Join(names, ", "), strings.Join(e.Columns, ", "))
}

// Mapping binds target fields to source column names for one table.
// Resolution is deterministic: the same headers and overrides always
// produce the same binding.
type Mapping struct {
	columns   map[types.TargetField]string
	overrides map[types.TargetField]bool
	headers   []string
}

// Resolve builds a Mapping from the table headers. Overrides bind a
// field to an exact column name and win over detection; remaining
// fields are detected by case-insensitive substring match against the
// alias list, first alias then first matching column.
func Resolve(headers []string, overrides map[types.TargetField]string) *Mapping {
	m := &Mapping{
		columns:   make(map[types.TargetField]string),
		overrides: make(map[types.TargetField]bool),
		headers:   headers,
	}

	for field, col := range overrides {
		if col == "" {
			continue
		}
		m.columns[field] = col
		m.overrides[field] = true
	}

	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(h)
	}

	for _, field := range types.AllTargetFields {
		if _, ok := m.columns[field]; ok {
			continue
		}
	aliases:
		for _, alias := range fieldAliases[field] {
			for i, col := range lower {
				if strings.Contains(col, alias) {
					m.columns[field] = headers[i]
					break aliases
				}
			}
		}
	}

	return m
}

// Column returns the source column bound to a field.
func (m *Mapping) Column(f types.TargetField) (string, bool) {
	col, ok := m.columns[f]
	return col, ok
}

// Has reports whether a field resolved to any column.
func (m *Mapping) Has(f types.TargetField) bool {
	_, ok := m.columns[f]
	return ok
}

// Require returns a ConfigError when any of the given fields is
// unbound. FieldMessageID is satisfied by either the base column or
// its sandbox variant when the run targets SANDBOX.
func (m *Mapping) Require(env types.Environment, fields ...types.TargetField) error {
	var missing []types.TargetField
	for _, f := range fields {
		if m.Has(f) {
			continue
		}
		if env == types.EnvironmentSandbox {
			if variant, ok := sandboxVariant[f]; ok && m.Has(variant) {
				continue
			}
		}
		missing = append(missing, f)
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing, Columns: m.headers}
	}
	return nil
}

// Value returns the trimmed cell bound to a field, or "" when the
// field is unbound or the cell is empty.
func (m *Mapping) Value(row map[string]string, f types.TargetField) string {
	col, ok := m.columns[f]
	if !ok {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// EnvValue resolves a field with per-row sandbox fallback: for SANDBOX
// runs the sandbox-specific column is consulted first and the base
// column is the fallback when that cell is empty. PRODUCTION runs read
// the base column only.
func (m *Mapping) EnvValue(row map[string]string, f types.TargetField, env types.Environment) string {
	if env == types.EnvironmentSandbox {
		if variant, ok := sandboxVariant[f]; ok {
			if v := m.Value(row, variant); v != "" {
				return v
			}
		}
	}
	return m.Value(row, f)
}

// Report lists the resolved bindings in display order for operator
// review before anything is executed.
func (m *Mapping) Report() []types.MappingEntry {
	entries := make([]types.MappingEntry, 0, len(m.columns))
	for _, f := range types.AllTargetFields {
		col, ok := m.columns[f]
		if !ok {
			continue
		}
		source := "detected"
		if m.overrides[f] {
			source = "override"
		}
		entries = append(entries, types.MappingEntry{Field: f, Column: col, Source: source})
	}
	return entries
}
