package diagnostic

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{
		Severity: SeverityError,
		Category: MissingValidation,
		Pos:      token.Position{Filename: "place.go", Line: 12, Column: 2},
		Struct:   "Place",
		Field:    "Lat",
		Message:  "missing a validation",
	}

	assert.Equal(t, "place.go:12:2: Place.Lat: [missing-validation] missing a validation", d.String())

	d.Pos = token.Position{}
	d.Field = ""
	assert.Equal(t, "Place: [missing-validation] missing a validation", d.String())
}

func TestDiagnostic_WarningString(t *testing.T) {
	d := Diagnostic{Severity: SeverityWarning, Struct: "Empty", Message: "no fields"}
	assert.Equal(t, "Empty: warning: no fields", d.String())
}

func TestDiagnostics_ErrorAndSort(t *testing.T) {
	var d Diagnostics
	assert.False(t, d.HasErrors())
	require.NoError(t, d.Error())

	d.Errorf(TooManyArguments, token.Position{Filename: "b.go", Line: 1, Column: 1}, "B", "X", "too many arguments (%d)", 3)
	d.AddError(ShapeMismatch, token.Position{Filename: "a.go", Line: 9, Column: 6}, "A", "", "only works on structures with named fields")
	d.AddWarning(token.Position{Filename: "a.go", Line: 2, Column: 1}, "A", "", "w")
	d.Sort()

	require.True(t, d.HasErrors())
	require.Len(t, d.Errors, 2)
	assert.Equal(t, "A", d.Errors[0].Struct)
	assert.Len(t, d.All(), 3)

	err := d.Error()
	require.Error(t, err)
	assert.Equal(t,
		"a.go:9:6: A: [shape-mismatch] only works on structures with named fields\n"+
			"b.go:1:1: B.X: [too-many-arguments] too many arguments (3)",
		err.Error())
}

func TestDiagnostics_Merge(t *testing.T) {
	var a, b Diagnostics
	a.AddError(MissingValidation, token.Position{}, "A", "F", "m")
	b.AddError(DuplicateValidation, token.Position{}, "B", "G", "d")
	b.AddWarning(token.Position{}, "B", "", "w")

	a.Merge(b)
	assert.Len(t, a.Errors, 2)
	assert.Len(t, a.Warnings, 1)
}

func TestCategory_Names(t *testing.T) {
	assert.Equal(t, "ShapeMismatch", ShapeMismatch.String())
	assert.Equal(t, "UnresolvableReference", UnresolvableReference.String())
	assert.Equal(t, "Category(0)", Category(0).String())
	assert.Equal(t, "duplicate-validation", DuplicateValidation.Code())
	assert.Equal(t, "unknown", Category(42).Code())
}
