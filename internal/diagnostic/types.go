package diagnostic

import (
	"errors"
	"fmt"
	"go/token"
	"sort"
	"strings"

	"sanitizer-generator/internal/common"
)

//go:generate go tool stringer -type=Category -output=category_string.go

// Category classifies a diagnostic.
type Category int

const (
	_ Category = iota

	ShapeMismatch
	MissingValidation
	DuplicateValidation
	MalformedArguments
	TooManyArguments
	UnresolvableReference
)

// Code returns the short code printed in front of diagnostic messages.
func (c Category) Code() string {
	switch c {
	case ShapeMismatch:
		return "shape-mismatch"
	case MissingValidation:
		return "missing-validation"
	case DuplicateValidation:
		return "duplicate-validation"
	case MalformedArguments:
		return "malformed-arguments"
	case TooManyArguments:
		return "too-many-arguments"
	case UnresolvableReference:
		return "unresolvable-reference"
	default:
		return common.UnknownStr
	}
}

// Severity represents the severity level of a diagnostic.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns a human-readable severity name.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return common.UnknownStr
	}
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Severity Severity
	Category Category
	// Pos is where the offending declaration starts.
	Pos token.Position
	// Struct and Field name the declaration (Field is empty for struct-level
	// diagnostics).
	Struct  string
	Field   string
	Message string
}

// String formats the diagnostic as "file:line:col: Struct.Field: [code] message".
func (d Diagnostic) String() string {
	var sb strings.Builder

	if d.Pos.IsValid() {
		sb.WriteString(d.Pos.String())
		sb.WriteString(": ")
	}

	if d.Struct != "" {
		sb.WriteString(d.Struct)

		if d.Field != "" {
			sb.WriteString(".")
			sb.WriteString(d.Field)
		}

		sb.WriteString(": ")
	}

	if d.Category != 0 {
		sb.WriteString("[" + d.Category.Code() + "] ")
	}

	if d.Severity == SeverityWarning {
		sb.WriteString("warning: ")
	}

	sb.WriteString(d.Message)

	return sb.String()
}

// Diagnostics collects the diagnostics of one generation run.
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
}

// AddError records an error diagnostic.
func (d *Diagnostics) AddError(cat Category, pos token.Position, structName, field, message string) {
	d.Errors = append(d.Errors, Diagnostic{
		Severity: SeverityError,
		Category: cat,
		Pos:      pos,
		Struct:   structName,
		Field:    field,
		Message:  message,
	})
}

// Errorf records an error diagnostic with a formatted message.
func (d *Diagnostics) Errorf(cat Category, pos token.Position, structName, field, format string, args ...any) {
	d.AddError(cat, pos, structName, field, fmt.Sprintf(format, args...))
}

// AddWarning records a warning diagnostic.
func (d *Diagnostics) AddWarning(pos token.Position, structName, field, message string) {
	d.Warnings = append(d.Warnings, Diagnostic{
		Severity: SeverityWarning,
		Pos:      pos,
		Struct:   structName,
		Field:    field,
		Message:  message,
	})
}

// HasErrors returns true if there are any error diagnostics.
func (d *Diagnostics) HasErrors() bool {
	return len(d.Errors) > 0
}

// Merge merges another Diagnostics instance into this one.
func (d *Diagnostics) Merge(other Diagnostics) {
	d.Errors = append(d.Errors, other.Errors...)
	d.Warnings = append(d.Warnings, other.Warnings...)
}

// Sort orders diagnostics by file position.
func (d *Diagnostics) Sort() {
	byPos := func(list []Diagnostic) func(i, j int) bool {
		return func(i, j int) bool {
			a, b := list[i].Pos, list[j].Pos
			if a.Filename != b.Filename {
				return a.Filename < b.Filename
			}

			if a.Line != b.Line {
				return a.Line < b.Line
			}

			return a.Column < b.Column
		}
	}

	sort.SliceStable(d.Errors, byPos(d.Errors))
	sort.SliceStable(d.Warnings, byPos(d.Warnings))
}

// All returns errors followed by warnings.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings))
	all = append(all, d.Errors...)

	return append(all, d.Warnings...)
}

// Error returns a combined error from all error diagnostics, or nil if valid.
func (d *Diagnostics) Error() error {
	if !d.HasErrors() {
		return nil
	}

	parts := make([]string, 0, len(d.Errors))
	for _, e := range d.Errors {
		parts = append(parts, e.String())
	}

	return errors.New(strings.Join(parts, "\n"))
}
