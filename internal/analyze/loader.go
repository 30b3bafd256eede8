package analyze

import (
	"bufio"
	"bytes"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

// GeneratedHeader starts every file written by the generator.
const GeneratedHeader = "// Code generated by sanitizer-generator. DO NOT EDIT."

// Analyzer loads Go packages and extracts type declarations.
type Analyzer struct {
	// Dir is the working directory for package patterns (empty: current).
	Dir string
	// BuildFlags are passed to the build system (e.g. -tags).
	BuildFlags []string
	// Imports are loaded along with the matched packages. Declarations see
	// them under their names wherever the declaring file leaves the name
	// free. Earlier entries win over later ones with the same name.
	Imports []Import
	// Overlay adds or replaces file contents, keyed by absolute path.
	Overlay map[string][]byte
}

// NewAnalyzer creates a new Analyzer that makes the runtime package
// available to declarations.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		Imports: []Import{{Path: RuntimePath}},
	}
}

// LoadPackages loads the specified packages and extracts their declarations.
// Patterns are standard Go package patterns (e.g., ".", "./examples/places").
func (a *Analyzer) LoadPackages(patterns ...string) ([]*Package, error) {
	matched, overlay, err := a.maskGenerated(patterns)
	if err != nil {
		return nil, err
	}

	for path, content := range a.Overlay {
		overlay[path] = content
	}

	query := append([]string(nil), patterns...)
	extra := make(map[string]bool)

	for _, imp := range a.Imports {
		if !matched[imp.Path] && !extra[imp.Path] {
			extra[imp.Path] = true
			query = append(query, imp.Path)
		}
	}

	cfg := &packages.Config{
		Mode:       LoadMode,
		Dir:        a.Dir,
		BuildFlags: a.BuildFlags,
		Overlay:    overlay,
	}

	pkgs, err := packages.Load(cfg, query...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var (
		targets []*packages.Package
		loaded  = make(map[string]*types.Package)
		errs    []error
	)

	for _, pkg := range pkgs {
		if extra[pkg.PkgPath] {
			// A missing import only leaves its name unresolved.
			if len(pkg.Errors) == 0 && pkg.Types != nil {
				loaded[pkg.PkgPath] = pkg.Types
			}

			continue
		}

		targets = append(targets, pkg)
		loaded[pkg.PkgPath] = pkg.Types

		for _, e := range pkg.Errors {
			if !a.unusedImport(e) {
				errs = append(errs, e)
			}
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %v", errs)
	}

	imports := a.namedImports(loaded)

	out := make([]*Package, 0, len(targets))
	for _, pkg := range targets {
		out = append(out, a.processPackage(pkg, imports))
	}

	return out, nil
}

// unusedImport reports whether e only says that one of Imports is imported
// by a file without being used. Declarations in struct tags do not count as
// uses, so such imports are tolerated.
func (a *Analyzer) unusedImport(e packages.Error) bool {
	if e.Kind != packages.TypeError || !strings.HasSuffix(e.Msg, "not used") {
		return false
	}

	quoted, err := strconv.QuotedPrefix(e.Msg)
	if err != nil {
		return false
	}

	path, err := strconv.Unquote(quoted)
	if err != nil {
		return false
	}

	for _, imp := range a.Imports {
		if imp.Path == path {
			return true
		}
	}

	return false
}

// namedPackage is a loaded import under the name declarations use.
type namedPackage struct {
	name string
	pkg  *types.Package
}

func (a *Analyzer) namedImports(loaded map[string]*types.Package) []namedPackage {
	var out []namedPackage

	for _, imp := range a.Imports {
		pkg := loaded[imp.Path]
		if pkg == nil {
			continue
		}

		name := imp.Name
		if name == "" {
			name = pkg.Name()
		}

		out = append(out, namedPackage{name: name, pkg: pkg})
	}

	return out
}

// maskGenerated lists the files of the matched packages and replaces the
// ones previously written by the generator with an empty package clause.
// It also returns the import paths of the matched packages.
func (a *Analyzer) maskGenerated(patterns []string) (map[string]bool, map[string][]byte, error) {
	cfg := &packages.Config{
		Mode:       packages.NeedName | packages.NeedFiles,
		Dir:        a.Dir,
		BuildFlags: a.BuildFlags,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list packages: %w", err)
	}

	matched := make(map[string]bool, len(pkgs))
	overlay := make(map[string][]byte)

	for _, pkg := range pkgs {
		matched[pkg.PkgPath] = true

		for _, f := range pkg.GoFiles {
			if IsGeneratedFile(f) {
				overlay[f] = []byte("package " + pkg.Name + "\n")
			}
		}
	}

	return matched, overlay, nil
}

// IsGeneratedFile reports whether the file starts with GeneratedHeader.
func IsGeneratedFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return false
	}

	return bytes.HasPrefix(line, []byte(GeneratedHeader))
}

// processPackage extracts declarations from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package, imports []namedPackage) *Package {
	out := &Package{
		Path:  pkg.PkgPath,
		Name:  pkg.Name,
		Fset:  pkg.Fset,
		Types: pkg.Types,
		Info:  pkg.TypesInfo,
	}

	if len(pkg.GoFiles) > 0 {
		out.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	for _, file := range pkg.Syntax {
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}

			for _, spec := range gen.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := ts.Doc
				if doc == nil && len(gen.Specs) == 1 {
					doc = gen.Doc
				}

				decl := a.typeDecl(out, file, ts, doc)
				extendScope(out, file, decl, imports)
				out.Decls = append(out.Decls, decl)
			}
		}
	}

	out.index()

	return out
}

func (a *Analyzer) typeDecl(pkg *Package, file *ast.File, ts *ast.TypeSpec, doc *ast.CommentGroup) *TypeDecl {
	decl := &TypeDecl{
		Name:     ts.Name.Name,
		Pos:      pkg.Fset.Position(ts.Name.Pos()),
		ScopePos: ts.Name.Pos(),
		File:     file,
		Spec:     ts,
	}

	if obj, ok := pkg.Info.Defs[ts.Name].(*types.TypeName); ok {
		decl.Obj = obj
	}

	for _, d := range parseDirectives(pkg.Fset, doc) {
		if d.Name == DirectiveDerive && d.Args == "" {
			decl.Derive = true
			continue
		}

		decl.Directives = append(decl.Directives, d)
	}

	if st, ok := ts.Type.(*ast.StructType); ok {
		decl.Struct = st
		decl.Fields = structFields(pkg, st)
	}

	return decl
}

// extendScope opens a scope around the name of decl, where expressions
// evaluated at decl.ScopePos see every package of imports whose name the
// declaring file does not already resolve.
func extendScope(pkg *Package, file *ast.File, decl *TypeDecl, imports []namedPackage) {
	fileScope := pkg.Info.Scopes[file]
	if fileScope == nil {
		return
	}

	var scope *types.Scope

	for _, imp := range imports {
		if _, obj := fileScope.LookupParent(imp.name, token.NoPos); obj != nil {
			continue
		}

		if scope == nil {
			scope = types.NewScope(fileScope, decl.Spec.Name.Pos(), decl.Spec.Name.End(), "declaration imports")
		}

		if scope.Lookup(imp.name) == nil {
			scope.Insert(types.NewPkgName(token.NoPos, pkg.Types, imp.name, imp.pkg))
		}
	}
}

// structFields lists the fields of a struct in declaration order.
func structFields(pkg *Package, st *ast.StructType) []FieldDecl {
	var out []FieldDecl

	for _, field := range st.Fields.List {
		tag, tagPos, tagErr := ParseTagLit(pkg.Fset, field.Tag)
		typ := pkg.Info.TypeOf(field.Type)

		if len(field.Names) == 0 {
			name := embeddedName(field.Type)
			out = append(out, FieldDecl{
				Name:     name,
				Pos:      pkg.Fset.Position(field.Type.Pos()),
				Exported: token.IsExported(name),
				Embedded: true,
				TypeExpr: field.Type,
				Type:     typ,
				Tag:      tag,
				TagPos:   tagPos,
				TagErr:   tagErr,
			})

			continue
		}

		for _, ident := range field.Names {
			out = append(out, FieldDecl{
				Name:     ident.Name,
				Pos:      pkg.Fset.Position(ident.Pos()),
				Exported: ident.IsExported(),
				TypeExpr: field.Type,
				Type:     typ,
				Tag:      tag,
				TagPos:   tagPos,
				TagErr:   tagErr,
			})
		}
	}

	return out
}

// embeddedName returns the implicit field name of an embedded type.
func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	default:
		return ""
	}
}

// parseDirectives extracts //sanitize: lines from a doc comment.
func parseDirectives(fset *token.FileSet, doc *ast.CommentGroup) []Directive {
	if doc == nil {
		return nil
	}

	var out []Directive

	for _, c := range doc.List {
		if !strings.HasPrefix(c.Text, DirectivePrefix) {
			continue
		}

		rest := strings.TrimPrefix(c.Text, DirectivePrefix)
		name, args := rest, ""
		lead := len(DirectivePrefix) + len(rest)

		if i := strings.IndexAny(rest, " \t"); i >= 0 {
			name, args = rest[:i], rest[i+1:]
			lead = len(DirectivePrefix) + i + 1
		}

		pos := fset.Position(c.Pos())

		trimmed := strings.TrimLeft(args, " \t")
		lead += len(args) - len(trimmed)

		out = append(out, Directive{
			Name:    name,
			Args:    strings.TrimRight(trimmed, " \t"),
			Pos:     pos,
			ArgsPos: advance(pos, c.Text[:lead]),
		})
	}

	return out
}
