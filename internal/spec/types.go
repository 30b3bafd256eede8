package spec

import (
	"go/ast"
	"go/token"
	"go/types"

	"sanitizer-generator/internal/analyze"
)

// Declaration is the raw text of one validation declaration.
type Declaration struct {
	Text string
	// Pos is the position of the first byte of Text.
	Pos token.Position
}

// At returns the position of the byte at offset in Text.
func (d Declaration) At(offset int) token.Position {
	if offset > len(d.Text) {
		offset = len(d.Text)
	}

	return analyze.Advance(d.Pos, d.Text[:offset])
}

// PkgRef is an identifier in a resolved expression that names an imported
// package.
type PkgRef struct {
	Ident *ast.Ident
	Path  string
	Name  string // Declared name of the imported package
}

// Expr is a resolved Go expression taken from a declaration.
type Expr struct {
	Node ast.Expr
	Text string
	Refs []PkgRef
}

// FieldSpec is the resolved validation of one struct field.
type FieldSpec struct {
	Name string
	Pos  token.Position

	// WireType is the type held by the raw record; under Optional it is a
	// pointer to InnerWire.
	WireType types.Type
	// TargetType is the declared field type.
	TargetType types.Type
	// InnerWire and Result are the validator's parameter and result types.
	InnerWire types.Type
	Result    types.Type

	Validator Expr
	Optional  bool
	// Passthrough is the field's struct tag without validation entries.
	Passthrough string
}

// StructSpec aggregates the field specifications of one struct, in
// declaration order.
type StructSpec struct {
	Name   string
	Pos    token.Position
	Type   types.Type
	Fields []*FieldSpec

	// Validator is nil when no struct-level validation is declared.
	Validator *Expr
	// ChecksOnly is set for struct validators of the form func(T) error.
	ChecksOnly bool
}

// PackageSpec holds every StructSpec of one package.
type PackageSpec struct {
	Path    string
	Name    string
	Dir     string
	Types   *types.Package
	Structs []*StructSpec
}
