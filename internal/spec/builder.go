package spec

import (
	"errors"
	"go/ast"
	"go/token"
	"go/types"

	"sanitizer-generator/internal/analyze"
	"sanitizer-generator/internal/common"
	"sanitizer-generator/internal/diagnostic"
	"sanitizer-generator/internal/schema"
)

// DefaultTagKey is the struct tag key holding field declarations.
const DefaultTagKey = "validate"

// Options selects and configures the structs to build.
type Options struct {
	// TagKey is the struct tag key of field declarations (default "validate").
	TagKey string
	// Types restricts the build to the named types. When empty, structs with
	// a //sanitize:derive directive and structs named by Schema are built.
	Types []string
	// Schema holds additional declarations; may be nil.
	Schema *schema.File
	// YAML reports existing UnmarshalYAML methods as conflicts.
	YAML bool
}

// Build parses and resolves the declarations of the selected structs of
// pkg. The returned PackageSpec is nil when any error was reported.
func Build(pkg *analyze.Package, opts Options) (*PackageSpec, *diagnostic.Diagnostics) {
	if opts.TagKey == "" {
		opts.TagKey = DefaultTagKey
	}

	b := &builder{pkg: pkg, opts: opts, diags: &diagnostic.Diagnostics{}}

	out := &PackageSpec{
		Path:  pkg.Path,
		Name:  pkg.Name,
		Dir:   pkg.Dir,
		Types: pkg.Types,
	}

	for _, decl := range b.selected() {
		if s := b.structSpec(decl); s != nil {
			out.Structs = append(out.Structs, s)
		}
	}

	b.diags.Sort()

	if b.diags.HasErrors() {
		return nil, b.diags
	}

	return out, b.diags
}

type builder struct {
	pkg   *analyze.Package
	opts  Options
	diags *diagnostic.Diagnostics
}

// selected returns the declarations to build, in source order. Names of
// the -type list missing from the package are left to MissingTypes; names
// of the schema must be declared here.
func (b *builder) selected() []*analyze.TypeDecl {
	want := make(map[string]bool)

	if len(b.opts.Types) > 0 {
		for _, name := range b.opts.Types {
			want[name] = true
		}
	} else {
		for _, d := range b.pkg.Derived() {
			want[d.Name] = true
		}

		for _, name := range b.opts.Schema.Names() {
			want[name] = true
		}
	}

	for name := range want {
		entries := b.opts.Schema.StructsNamed(name)
		if b.pkg.Lookup(name) != nil || len(entries) == 0 {
			continue
		}

		b.diags.Errorf(diagnostic.ShapeMismatch, entries[0].Pos, name, "", "no type %s in package %s", name, b.pkg.Path)
	}

	var out []*analyze.TypeDecl

	for _, d := range b.pkg.Decls {
		if want[d.Name] {
			out = append(out, d)
		}
	}

	return out
}

// MissingTypes reports the names of opts.Types declared by none of pkgs.
// Names the schema lists are reported by Build at their schema entry.
func MissingTypes(pkgs []*analyze.Package, opts Options) *diagnostic.Diagnostics {
	diags := &diagnostic.Diagnostics{}

	for _, name := range opts.Types {
		if len(opts.Schema.StructsNamed(name)) > 0 {
			continue
		}

		found := false
		for _, pkg := range pkgs {
			if pkg.Lookup(name) != nil {
				found = true
				break
			}
		}

		if !found {
			diags.Errorf(diagnostic.ShapeMismatch, token.Position{}, name, "", "no type %s in the loaded packages", name)
		}
	}

	return diags
}

func (b *builder) structSpec(decl *analyze.TypeDecl) *StructSpec {
	before := len(b.diags.Errors)

	var validators []Declaration

	for _, dir := range decl.Directives {
		switch dir.Name {
		case analyze.DirectiveValidate:
			validators = append(validators, Declaration{Text: dir.Args, Pos: dir.ArgsPos})
		case analyze.DirectiveDerive:
			b.diags.Errorf(diagnostic.TooManyArguments, dir.ArgsPos, decl.Name, "",
				"%s%s takes no arguments", analyze.DirectivePrefix, analyze.DirectiveDerive)
		default:
			b.diags.Errorf(diagnostic.MalformedArguments, dir.Pos, decl.Name, "",
				"unknown directive %s%s", analyze.DirectivePrefix, dir.Name)
		}
	}

	entries := b.opts.Schema.StructsNamed(decl.Name)
	for _, e := range entries {
		if e.Validate != nil {
			validators = append(validators, Declaration{Text: e.Validate.Text, Pos: e.Validate.Pos})
		}
	}

	if !b.checkShape(decl) {
		return nil
	}

	r := &resolver{pkg: b.pkg, decl: decl}
	out := &StructSpec{
		Name: decl.Name,
		Pos:  decl.Pos,
		Type: decl.Obj.Type(),
	}

	if len(decl.Fields) == 0 {
		b.diags.AddWarning(decl.Pos, decl.Name, "", "structure has no fields")
	}

	decls := b.fieldDeclarations(decl, entries)

	for _, f := range decl.Fields {
		fd := decls[f.Name]

		switch {
		case f.TagErr != nil:
			b.diags.Errorf(diagnostic.MalformedArguments, f.TagPos, decl.Name, f.Name, "%v", f.TagErr)
		case common.IsEmpty(fd):
			b.diags.AddError(diagnostic.MissingValidation, f.Pos, decl.Name, f.Name, "missing validation function")
		case common.IsMultiple(fd):
			b.diags.AddError(diagnostic.DuplicateValidation, fd[len(fd)-1].Pos, decl.Name, f.Name, "duplicate validation step")
		default:
			if fs := b.fieldSpec(r, decl, f, fd[0]); fs != nil {
				out.Fields = append(out.Fields, fs)
			}
		}
	}

	switch {
	case common.IsMultiple(validators):
		b.diags.AddError(diagnostic.DuplicateValidation, validators[len(validators)-1].Pos, decl.Name, "", "duplicate validation function")
	case common.IsSingle(validators):
		b.structValidator(r, decl, validators[0], out)
	}

	if len(b.diags.Errors) > before {
		return nil
	}

	return out
}

// checkShape reports structs that cannot be decoded through a raw record.
func (b *builder) checkShape(decl *analyze.TypeDecl) bool {
	const msg = "only works on structures with named fields"

	if decl.Struct == nil || decl.Obj == nil {
		b.diags.AddError(diagnostic.ShapeMismatch, decl.Pos, decl.Name, "", msg)
		return false
	}

	if decl.IsGeneric() {
		b.diags.AddError(diagnostic.ShapeMismatch, decl.Pos, decl.Name, "", "generic structures are not supported")
		return false
	}

	ok := true

	for _, f := range decl.Fields {
		switch {
		case f.Embedded:
			b.diags.Errorf(diagnostic.ShapeMismatch, f.Pos, decl.Name, f.Name, "embedded field: %s", msg)
			ok = false
		case f.Name == "_":
			b.diags.Errorf(diagnostic.ShapeMismatch, f.Pos, decl.Name, f.Name, "blank field: %s", msg)
			ok = false
		case !f.Exported:
			b.diags.AddError(diagnostic.ShapeMismatch, f.Pos, decl.Name, f.Name, "unexported field cannot be decoded")
			ok = false
		}
	}

	methods := []string{"UnmarshalJSON"}
	if b.opts.YAML {
		methods = append(methods, "UnmarshalYAML")
	}

	for _, m := range methods {
		obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(decl.Obj.Type()), true, b.pkg.Types, m)
		if fn, isFunc := obj.(*types.Func); isFunc {
			b.diags.Errorf(diagnostic.ShapeMismatch, b.pkg.Fset.Position(fn.Pos()), decl.Name, "",
				"%s already has a %s method", decl.Name, m)
			ok = false
		}
	}

	return ok
}

// fieldDeclarations groups the declarations of every field by name, tags
// first, then schema entries in file order.
func (b *builder) fieldDeclarations(decl *analyze.TypeDecl, entries []*schema.Struct) map[string][]Declaration {
	out := make(map[string][]Declaration, len(decl.Fields))
	known := make(map[string]bool, len(decl.Fields))

	for _, f := range decl.Fields {
		known[f.Name] = true

		for _, p := range f.Tag.Lookup(b.opts.TagKey) {
			out[f.Name] = append(out[f.Name], Declaration{Text: p.Value, Pos: p.Pos})
		}
	}

	for _, e := range entries {
		for _, f := range e.Fields {
			if !known[f.Name] {
				b.diags.Errorf(diagnostic.ShapeMismatch, f.Pos, decl.Name, f.Name, "no field %s in %s", f.Name, decl.Name)
				continue
			}

			out[f.Name] = append(out[f.Name], Declaration{Text: f.Decl.Text, Pos: f.Decl.Pos})
		}
	}

	return out
}

func (b *builder) argError(err error, d Declaration, structName, field string) {
	var aerr *ArgError
	if errors.As(err, &aerr) {
		b.diags.AddError(aerr.Category, d.At(aerr.Offset), structName, field, aerr.Msg)
		return
	}

	b.diags.AddError(diagnostic.MalformedArguments, d.Pos, structName, field, err.Error())
}

func (b *builder) fieldSpec(r *resolver, decl *analyze.TypeDecl, f analyze.FieldDecl, d Declaration) *FieldSpec {
	args, err := ParseArgs(d.Text)
	if err != nil {
		b.argError(err, d, decl.Name, f.Name)
		return nil
	}

	var (
		inner    types.Type
		wireNode ast.Expr
	)

	if args.Wire != nil {
		inner, err = r.evalType(args.Wire, args.WireText)
		if err != nil {
			b.diags.AddError(diagnostic.UnresolvableReference, d.At(args.WireOffset), decl.Name, f.Name, err.Error())
			return nil
		}

		wireNode = args.Wire
	}

	wire := inner

	if args.Optional {
		ptr, ok := f.Type.Underlying().(*types.Pointer)
		if !ok {
			b.diags.Errorf(diagnostic.ShapeMismatch, f.Pos, decl.Name, f.Name,
				"optional field must have a pointer type, got %s", f.Type)

			return nil
		}

		if inner == nil {
			inner = ptr.Elem()

			if star, isStar := f.TypeExpr.(*ast.StarExpr); isStar {
				wireNode = star.X
			} else if wireNode, err = r.typeNode(inner); err != nil {
				b.diags.AddError(diagnostic.UnresolvableReference, f.Pos, decl.Name, f.Name, err.Error())
				return nil
			}
		}

		wire = types.NewPointer(inner)
	} else if inner == nil {
		inner, wire, wireNode = f.Type, f.Type, f.TypeExpr
	}

	sig, expr, err := r.validator(args.Validator, args.ValidatorText, inner, wireNode, args.Optional)
	if err != nil {
		b.diags.AddError(diagnostic.UnresolvableReference, d.At(args.ValidatorOffset), decl.Name, f.Name, err.Error())
		return nil
	}

	result := sig.Results().At(0).Type()

	produced := result
	if args.Optional {
		produced = types.NewPointer(result)
	}

	if !types.AssignableTo(produced, f.Type) {
		b.diags.Errorf(diagnostic.UnresolvableReference, d.At(args.ValidatorOffset), decl.Name, f.Name,
			"validation function %q returns %s, which cannot be assigned to a field of type %s", args.ValidatorText, produced, f.Type)

		return nil
	}

	return &FieldSpec{
		Name:        f.Name,
		Pos:         f.Pos,
		WireType:    wire,
		TargetType:  f.Type,
		InnerWire:   inner,
		Result:      result,
		Validator:   expr,
		Optional:    args.Optional,
		Passthrough: f.Tag.Without(b.opts.TagKey),
	}
}

// structValidator resolves a struct-level validation function, either
// func(T) (T, error) or func(T) error.
func (b *builder) structValidator(r *resolver, decl *analyze.TypeDecl, d Declaration, out *StructSpec) {
	args, err := ParseArgs(d.Text)
	if err != nil {
		b.argError(err, d, decl.Name, "")
		return
	}

	if args.Optional {
		b.diags.Errorf(diagnostic.MalformedArguments, d.Pos, decl.Name, "", "%s is not allowed for struct validation", OptMarker)
		return
	}

	if args.Wire != nil {
		b.diags.AddError(diagnostic.TooManyArguments, d.At(args.WireOffset), decl.Name, "", "too many validation arguments")
		return
	}

	typ := decl.Obj.Type()
	pos := d.At(args.ValidatorOffset)

	info := newInfo()

	tv, err := r.eval(args.Validator, info)
	if err != nil {
		b.diags.Errorf(diagnostic.UnresolvableReference, pos, decl.Name, "", "cannot resolve validation function %q: %v", args.ValidatorText, err)
		return
	}

	sig, ok := tv.Type.Underlying().(*types.Signature)
	if !tv.IsValue() || !ok {
		b.diags.Errorf(diagnostic.UnresolvableReference, pos, decl.Name, "",
			"validation function %q has type %s, expected func(%s) (%s, error)", args.ValidatorText, tv.Type, decl.Name, decl.Name)

		return
	}

	refs, err := r.pkgRefs(args.Validator, info)
	if err != nil {
		b.diags.AddError(diagnostic.UnresolvableReference, pos, decl.Name, "", err.Error())
		return
	}

	if sig.TypeParams().Len() > 0 {
		if sig, err = r.instantiate(args.Validator, args.ValidatorText, ast.NewIdent(decl.Name)); err != nil {
			b.diags.AddError(diagnostic.UnresolvableReference, pos, decl.Name, "", err.Error())
			return
		}
	}

	params, results := sig.Params(), sig.Results()

	checksOnly := results.Len() == 1 && types.Identical(results.At(0).Type(), errorType)
	full := results.Len() == 2 && types.Identical(results.At(1).Type(), errorType) &&
		types.AssignableTo(results.At(0).Type(), typ)

	if params.Len() != 1 || sig.Variadic() || !types.AssignableTo(typ, params.At(0).Type()) || (!checksOnly && !full) {
		b.diags.Errorf(diagnostic.UnresolvableReference, pos, decl.Name, "",
			"validation function %q has signature %s, expected func(%s) (%s, error)", args.ValidatorText, sig, decl.Name, decl.Name)

		return
	}

	out.Validator = &Expr{Node: args.Validator, Text: args.ValidatorText, Refs: refs}
	out.ChecksOnly = checksOnly
}
