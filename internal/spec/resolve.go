package spec

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/types"
	"strconv"

	"sanitizer-generator/internal/analyze"
)

var errorType = types.Universe.Lookup("error").Type()

// resolver type-checks declaration expressions in the scope of the file
// declaring a struct, so that imports resolve exactly as in user code.
type resolver struct {
	pkg  *analyze.Package
	decl *analyze.TypeDecl
}

func newInfo() *types.Info {
	return &types.Info{
		Types:     make(map[ast.Expr]types.TypeAndValue),
		Uses:      make(map[*ast.Ident]types.Object),
		Instances: make(map[*ast.Ident]types.Instance),
	}
}

func (r *resolver) eval(node ast.Expr, info *types.Info) (types.TypeAndValue, error) {
	if err := types.CheckExpr(r.pkg.Fset, r.pkg.Types, r.decl.ScopePos, node, info); err != nil {
		// Positions of parsed declarations are not part of the package file
		// set; only the message is meaningful.
		var terr types.Error
		if errors.As(err, &terr) {
			return types.TypeAndValue{}, errors.New(terr.Msg)
		}

		return types.TypeAndValue{}, err
	}

	return info.Types[node], nil
}

// evalType resolves a type expression.
func (r *resolver) evalType(node ast.Expr, text string) (types.Type, error) {
	tv, err := r.eval(node, newInfo())
	if err != nil {
		return nil, fmt.Errorf("cannot resolve type %q: %w", text, err)
	}

	if !tv.IsType() {
		return nil, fmt.Errorf("%q is not a type", text)
	}

	return tv.Type, nil
}

// typeNode builds an expression for t as it would be written in the
// declaring file.
func (r *resolver) typeNode(t types.Type) (ast.Expr, error) {
	names := r.importNames()

	var missing string

	text := types.TypeString(t, func(p *types.Package) string {
		if p == r.pkg.Types {
			return ""
		}

		name, ok := names[p.Path()]
		if !ok && missing == "" {
			missing = p.Path()
		}

		return name
	})

	if missing != "" {
		return nil, fmt.Errorf("type %s refers to package %q which is not imported by %s", text, missing, r.decl.Pos.Filename)
	}

	return parser.ParseExpr(text)
}

// importNames maps import paths of the declaring file to their local names.
func (r *resolver) importNames() map[string]string {
	out := make(map[string]string, len(r.decl.File.Imports))

	for _, imp := range r.decl.File.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			continue
		}

		var obj types.Object
		if imp.Name != nil {
			obj = r.pkg.Info.Defs[imp.Name]
		} else {
			obj = r.pkg.Info.Implicits[imp]
		}

		if pn, ok := obj.(*types.PkgName); ok {
			out[path] = pn.Name()
		}
	}

	return out
}

// validator resolves a validation function applied to values of type wire.
// wireNode is an expression for wire valid in the declaring file. When exact
// is set the parameter type must be identical to wire.
func (r *resolver) validator(node ast.Expr, text string, wire types.Type, wireNode ast.Expr, exact bool) (*types.Signature, Expr, error) {
	info := newInfo()

	tv, err := r.eval(node, info)
	if err != nil {
		return nil, Expr{}, fmt.Errorf("cannot resolve validation function %q: %w", text, err)
	}

	expr := Expr{Node: node, Text: text}

	if !tv.IsValue() {
		return nil, expr, fmt.Errorf("validation function %q is not a value", text)
	}

	refs, err := r.pkgRefs(node, info)
	if err != nil {
		return nil, expr, err
	}

	expr.Refs = refs

	sig, ok := tv.Type.Underlying().(*types.Signature)
	if !ok {
		return nil, expr, fmt.Errorf("validation function %q has type %s, expected func(%s) (T, error)", text, tv.Type, wire)
	}

	if sig.TypeParams().Len() > 0 {
		sig, err = r.instantiate(node, text, wireNode)
		if err != nil {
			return nil, expr, err
		}
	}

	if err := checkSignature(sig, text, wire, exact); err != nil {
		return nil, expr, err
	}

	return sig, expr, nil
}

// instantiate infers the type arguments of a generic validation function
// from the call v(*new(W)).
func (r *resolver) instantiate(node ast.Expr, text string, wireNode ast.Expr) (*types.Signature, error) {
	call := &ast.CallExpr{
		Fun: node,
		Args: []ast.Expr{&ast.StarExpr{X: &ast.CallExpr{
			Fun:  ast.NewIdent("new"),
			Args: []ast.Expr{wireNode},
		}}},
	}

	info := newInfo()

	if _, err := r.eval(call, info); err != nil {
		return nil, fmt.Errorf("cannot apply validation function %q: %w", text, err)
	}

	if ident := funcIdent(node); ident != nil {
		if inst, ok := info.Instances[ident]; ok {
			if sig, ok := inst.Type.(*types.Signature); ok {
				return sig, nil
			}
		}
	}

	return nil, fmt.Errorf("cannot infer type arguments of validation function %q", text)
}

func checkSignature(sig *types.Signature, text string, wire types.Type, exact bool) error {
	params, results := sig.Params(), sig.Results()

	if params.Len() != 1 || sig.Variadic() || results.Len() != 2 || !types.Identical(results.At(1).Type(), errorType) {
		return fmt.Errorf("validation function %q has signature %s, expected func(%s) (T, error)", text, sig, wire)
	}

	param := params.At(0).Type()

	if exact && !types.Identical(param, wire) {
		return fmt.Errorf("optional validation function %q must accept %s, got %s", text, wire, param)
	}

	if !types.AssignableTo(wire, param) {
		return fmt.Errorf("validation function %q accepts %s, not %s", text, param, wire)
	}

	return nil
}

// pkgRefs lists the identifiers of node naming imported packages. Objects
// of other packages reached without a qualifier come from dot imports,
// which a generated file cannot repeat.
func (r *resolver) pkgRefs(node ast.Expr, info *types.Info) ([]PkgRef, error) {
	var (
		refs []PkgRef
		err  error
	)

	qualified := make(map[*ast.Ident]bool)

	ast.Inspect(node, func(n ast.Node) bool {
		if err != nil {
			return false
		}

		if sel, ok := n.(*ast.SelectorExpr); ok {
			qualified[sel.Sel] = true
		}

		ident, ok := n.(*ast.Ident)
		if !ok {
			return true
		}

		switch obj := info.Uses[ident].(type) {
		case nil:
		case *types.PkgName:
			refs = append(refs, PkgRef{Ident: ident, Path: obj.Imported().Path(), Name: obj.Imported().Name()})
		default:
			if !qualified[ident] && obj.Pkg() != nil && obj.Pkg() != r.pkg.Types && obj.Parent() == obj.Pkg().Scope() {
				err = fmt.Errorf("%s is dot-imported from %q and cannot be referenced by generated code", ident.Name, obj.Pkg().Path())
			}
		}

		return true
	})

	return refs, err
}

// funcIdent returns the identifier naming a (possibly instantiated or
// qualified) function.
func funcIdent(node ast.Expr) *ast.Ident {
	switch n := node.(type) {
	case *ast.Ident:
		return n
	case *ast.SelectorExpr:
		return n.Sel
	case *ast.IndexExpr:
		return funcIdent(n.X)
	case *ast.IndexListExpr:
		return funcIdent(n.X)
	case *ast.ParenExpr:
		return funcIdent(n.X)
	default:
		return nil
	}
}
