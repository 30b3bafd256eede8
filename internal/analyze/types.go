package analyze

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"
)

// RuntimePath is the import path of the runtime package used by generated
// code. Declarations name it "sanitize" without importing it.
const RuntimePath = "sanitizer-generator/sanitize"

// DirectivePrefix starts every comment directive understood by the generator.
const DirectivePrefix = "//sanitize:"

// Directive names.
const (
	DirectiveDerive   = "derive"
	DirectiveValidate = "validate"
)

// Package is a loaded, type-checked package.
type Package struct {
	Path  string // Import path
	Name  string // Package name
	Dir   string // Directory holding the package sources
	Fset  *token.FileSet
	Types *types.Package
	Info  *types.Info
	// Decls holds every top-level type declaration, in source order.
	Decls []*TypeDecl

	byName map[string]*TypeDecl
}

// Lookup returns the top-level type declared under name, or nil.
func (p *Package) Lookup(name string) *TypeDecl {
	return p.byName[name]
}

// Derived returns the declarations carrying a //sanitize:derive directive,
// including malformed ones with arguments.
func (p *Package) Derived() []*TypeDecl {
	var out []*TypeDecl

	for _, d := range p.Decls {
		if d.Derive || d.hasDirective(DirectiveDerive) {
			out = append(out, d)
		}
	}

	return out
}

func (p *Package) index() {
	p.byName = make(map[string]*TypeDecl, len(p.Decls))

	sort.SliceStable(p.Decls, func(i, j int) bool {
		a, b := p.Decls[i].Pos, p.Decls[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}

		return a.Offset < b.Offset
	})

	for _, d := range p.Decls {
		p.byName[d.Name] = d
	}
}

// TypeDecl is one top-level type declaration.
type TypeDecl struct {
	Name string
	Pos  token.Position
	// ScopePos is a position inside the declaring file, used to evaluate
	// expressions in that file's scope (its imports).
	ScopePos token.Pos
	File     *ast.File
	Spec     *ast.TypeSpec
	Obj      *types.TypeName

	// Derive is set by a //sanitize:derive directive.
	Derive bool
	// Directives lists every other //sanitize: directive, in order.
	Directives []Directive

	// Struct is nil when the declaration is not a struct type.
	Struct *ast.StructType
	Fields []FieldDecl
}

func (d *TypeDecl) hasDirective(name string) bool {
	for _, dir := range d.Directives {
		if dir.Name == name {
			return true
		}
	}

	return false
}

// IsGeneric reports whether the declaration has type parameters.
func (d *TypeDecl) IsGeneric() bool {
	return d.Spec.TypeParams != nil && d.Spec.TypeParams.NumFields() > 0
}

// Directive is a //sanitize:<name> <args> comment line.
type Directive struct {
	Name    string
	Args    string
	Pos     token.Position // Position of the directive
	ArgsPos token.Position // Position of the first byte of Args
}

// FieldDecl describes a struct field.
type FieldDecl struct {
	Name     string
	Pos      token.Position
	Exported bool
	Embedded bool
	TypeExpr ast.Expr
	Type     types.Type
	// Tag holds the parsed struct tag; TagErr is set when the tag is not in
	// the conventional key:"value" format.
	Tag    Tag
	TagPos token.Position
	TagErr error
}

// Import is a package declarations may reference without the declaring file
// importing it.
type Import struct {
	Name string // Local name; empty for the package's declared name
	Path string
}

// ParseImport parses "path" or "name=path".
func ParseImport(s string) (Import, error) {
	name, path, aliased := strings.Cut(strings.TrimSpace(s), "=")
	if !aliased {
		name, path = "", name
	}

	name, path = strings.TrimSpace(name), strings.TrimSpace(path)

	switch {
	case path == "":
		return Import{}, fmt.Errorf("import %q: missing path", s)
	case aliased && (!token.IsIdentifier(name) || name == "_"):
		return Import{}, fmt.Errorf("import %q: %q is not a valid package name", s, name)
	}

	return Import{Name: name, Path: path}, nil
}
