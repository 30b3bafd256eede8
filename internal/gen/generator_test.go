package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sanitizer-generator/internal/analyze"
	"sanitizer-generator/internal/spec"
)

var spaces = regexp.MustCompile(`\s+`)

// squash collapses whitespace so assertions do not depend on gofmt
// alignment.
func squash(s string) string {
	return spaces.ReplaceAllString(s, " ")
}

// shapesAnalyzer loads the shapes fixture, whose declarations name the
// runtime package sz.
func shapesAnalyzer() *analyze.Analyzer {
	a := analyze.NewAnalyzer()
	a.Imports = []analyze.Import{{Name: "sz", Path: RuntimePath}}

	return a
}

func buildShapes(t *testing.T, names ...string) *spec.PackageSpec {
	t.Helper()

	pkgs, err := shapesAnalyzer().LoadPackages("./testdata/shapes")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)

	ps, diags := spec.Build(pkgs[0], spec.Options{Types: names})
	require.NoError(t, diags.Error())

	return ps
}

func generate(t *testing.T, config GeneratorConfig, ps *spec.PackageSpec) string {
	t.Helper()

	file, err := NewGenerator(config).Generate(ps)
	require.NoError(t, err)
	require.NotNil(t, file)

	assert.Equal(t, "shapes_sanitize.go", file.Filename)
	assert.Equal(t, ps.Dir, file.Dir)

	_, err = parser.ParseFile(token.NewFileSet(), file.Filename, file.Content, parser.AllErrors)
	require.NoError(t, err, string(file.Content))

	return string(file.Content)
}

func TestGenerator_Generate(t *testing.T) {
	content := generate(t, DefaultGeneratorConfig(), buildShapes(t))
	flat := squash(content)

	assert.True(t, strings.HasPrefix(content, analyze.GeneratedHeader))
	assert.Contains(t, content, "package shapes\n")

	// Imports: the package-level json forces an alias, the sz alias is
	// replaced by the package name.
	assert.Contains(t, flat, `json2 "encoding/json"`)
	assert.Contains(t, flat, `"net/url"`)
	assert.Contains(t, flat, `"sanitizer-generator/sanitize"`)
	assert.NotContains(t, flat, "sz.")
	assert.NotContains(t, flat, "yaml")

	// Raw record.
	assert.Contains(t, flat, "type pointRaw struct {")
	assert.Contains(t, flat, "X int `json:\"x\"`")
	assert.Contains(t, flat, "Link *string `json:\"link\"`")
	assert.Contains(t, flat, "Odd int }")

	// The validator named out moves the local variable aside.
	assert.Contains(t, flat, "func (raw pointRaw) sanitize() (Point, error) { var ( out2 Point err error )")
	assert.Contains(t, flat, `if out2.X, err = out(raw.X); err != nil { return Point{}, sanitize.Custom("Point", "X", err) }`)
	assert.Contains(t, flat, `if out2.Name, err = sanitize.MaxText(5)(raw.Name); err != nil {`)
	assert.Contains(t, flat, `if out2.Link, err = sanitize.Opt[string, url.URL](sanitize.SecureURL)(raw.Link); err != nil {`)
	assert.Contains(t, flat, `if out2.Count, err = sanitize.Pass(raw.Count); err != nil {`)
	assert.Contains(t, flat, `if out2.Note, err = sanitize.Opt[string, string](sanitize.Pass)(raw.Note); err != nil {`)
	assert.Contains(t, flat, `if out2.Odd, err = (func(v int) (int, error) { return v, nil })(raw.Odd); err != nil {`)
	assert.Contains(t, flat, `if err = checkPoint(out2); err != nil { return Point{}, sanitize.Custom("Point", "", err) } return out2, nil }`)

	// Glue.
	assert.Contains(t, flat, `func (dst *Point) UnmarshalJSON(data []byte) error { if string(data) == "null" { return nil } var raw pointRaw if err := json2.Unmarshal(data, &raw); err != nil {`)
	assert.Contains(t, flat, "out2, err := raw.sanitize() if err != nil { return err } *dst = out2 return nil }")

	// Field validators run in declaration order.
	assert.Less(t, indexOf(flat, "out2.X, err"), indexOf(flat, "out2.Name, err"))
	assert.Less(t, indexOf(flat, "out2.Name, err"), indexOf(flat, "out2.Link, err"))
	assert.Less(t, indexOf(flat, "out2.Odd, err"), indexOf(flat, "checkPoint(out2)"))

	// A struct without fields needs neither err nor the runtime.
	assert.Contains(t, flat, "type emptyRaw struct { }")
	assert.Contains(t, flat, "func (raw emptyRaw) sanitize() (Empty, error) { var out2 Empty return out2, nil }")
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func TestGenerator_Generate_YAMLAndGoccy(t *testing.T) {
	content := generate(t, GeneratorConfig{JSON: JSONGoccy, YAML: true}, buildShapes(t))
	flat := squash(content)

	assert.Contains(t, flat, `json2 "github.com/goccy/go-json"`)
	assert.NotContains(t, flat, `"encoding/json"`)
	assert.Contains(t, flat, `"gopkg.in/yaml.v3"`)
	assert.Contains(t, flat, "func (dst *Point) UnmarshalYAML(node *yaml.Node) error { var raw pointRaw if err := node.Decode(&raw); err != nil {")
	assert.Contains(t, flat, "func (dst *Empty) UnmarshalYAML(node *yaml.Node) error {")
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	ps := buildShapes(t)

	first := generate(t, DefaultGeneratorConfig(), ps)
	second := generate(t, DefaultGeneratorConfig(), ps)
	assert.Equal(t, first, second)
}

func TestGenerator_Generate_NoStructs(t *testing.T) {
	file, err := NewGenerator(DefaultGeneratorConfig()).Generate(&spec.PackageSpec{Name: "empty"})
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestGenerator_Generate_RawNameClash(t *testing.T) {
	flat := squash(generate(t, DefaultGeneratorConfig(), buildShapes(t, "Clash")))

	assert.Contains(t, flat, "type clashRaw2 struct { A int }")
	assert.Contains(t, flat, "func (raw clashRaw2) sanitize() (Clash, error) {")
}

func TestGenerator_Generate_TypeChecks(t *testing.T) {
	configs := map[string]GeneratorConfig{
		"std":        DefaultGeneratorConfig(),
		"goccy yaml": {JSON: JSONGoccy, YAML: true},
	}

	for name, config := range configs {
		t.Run(name, func(t *testing.T) {
			file, err := NewGenerator(config).Generate(buildShapes(t, "Point", "Empty", "Clash"))
			require.NoError(t, err)

			// Reload the fixture with the generated file beside it; any type
			// error fails the load.
			a := shapesAnalyzer()
			a.Overlay = map[string][]byte{filepath.Join(file.Dir, file.Filename): file.Content}

			pkgs, err := a.LoadPackages("./testdata/shapes")
			require.NoError(t, err, string(file.Content))
			require.Len(t, pkgs, 1)

			scope := pkgs[0].Types.Scope()
			assert.NotNil(t, scope.Lookup("pointRaw"))
			assert.NotNil(t, scope.Lookup("clashRaw2"))

			for _, typ := range []string{"Point", "Empty", "Clash"} {
				mset := types.NewMethodSet(types.NewPointer(scope.Lookup(typ).Type()))
				assert.NotNil(t, mset.Lookup(nil, "UnmarshalJSON"), typ)
				assert.Equal(t, config.YAML, mset.Lookup(nil, "UnmarshalYAML") != nil, typ)
			}
		})
	}
}

func TestGenerator_Generate_UnformattedSidecar(t *testing.T) {
	dir := t.TempDir()
	pkg := types.NewPackage("example.com/p", "p")

	ps := &spec.PackageSpec{
		Path:  pkg.Path(),
		Name:  pkg.Name(),
		Dir:   dir,
		Types: pkg,
		Structs: []*spec.StructSpec{{
			Name: "A",
			Fields: []*spec.FieldSpec{{
				Name:       "F",
				WireType:   types.Typ[types.Int],
				TargetType: types.Typ[types.Int],
				Validator:  spec.Expr{Node: ast.NewIdent("x"), Text: "x)("},
			}},
		}},
	}

	file, err := NewGenerator(DefaultGeneratorConfig()).Generate(ps)
	require.Error(t, err)
	require.NotNil(t, file)
	assert.Contains(t, string(file.Content), "x)((raw.F)")

	sidecar, err := os.ReadFile(filepath.Join(dir, "p_sanitize.unformatted.go"))
	require.NoError(t, err)
	assert.Equal(t, file.Content, sidecar)
}

func TestParseJSONFramework(t *testing.T) {
	f, err := ParseJSONFramework("goccy")
	require.NoError(t, err)
	assert.Equal(t, JSONGoccy, f)

	f, err = ParseJSONFramework("std")
	require.NoError(t, err)
	assert.Equal(t, JSONStd, f)

	_, err = ParseJSONFramework("sonic")
	assert.Error(t, err)
}

func TestFreeName(t *testing.T) {
	taken := map[string]bool{"out": true, "out2": true}

	assert.Equal(t, "out3", freeName("out", taken))
	assert.Equal(t, "out4", freeName("out", taken))
	assert.Equal(t, "raw", freeName("raw", taken))
	assert.True(t, taken["raw"])
}

func TestImportSet(t *testing.T) {
	s := newImportSet("example.com/self", []string{"json"}, map[string]bool{"url": true})

	assert.Equal(t, "", s.add("example.com/self", "self"))
	assert.Equal(t, "json2", s.add("encoding/json", "json"))
	assert.Equal(t, "json2", s.add("encoding/json", "json"))
	assert.Equal(t, "json3", s.add("github.com/goccy/go-json", "json"))
	assert.Equal(t, "url2", s.add("net/url", "url"))
	assert.Equal(t, "yaml", s.add("gopkg.in/yaml.v3", "yaml"))
	assert.Equal(t, "yaml.", s.qualifier("gopkg.in/yaml.v3", "yaml"))
	assert.Equal(t, "", s.qualifier("example.com/self", "self"))
	assert.Equal(t, "strings", s.add("strings", ""))

	assert.Equal(t, []importSpec{
		{Alias: "json2", Path: "encoding/json"},
		{Alias: "json3", Path: "github.com/goccy/go-json"},
		{Path: "gopkg.in/yaml.v3"},
		{Alias: "url2", Path: "net/url"},
		{Path: "strings"},
	}, s.specs())
}

func TestRenderExpr(t *testing.T) {
	args, err := spec.ParseArgs("sz.Opt[sz.Pass[int], url.URL]")
	require.NoError(t, err)

	node := args.Validator.(*ast.IndexListExpr)
	sel := node.X.(*ast.SelectorExpr)
	inner := node.Indices[0].(*ast.IndexExpr).X.(*ast.SelectorExpr)
	urlSel := node.Indices[1].(*ast.SelectorExpr)

	e := spec.Expr{
		Node: args.Validator,
		Text: args.ValidatorText,
		Refs: []spec.PkgRef{
			{Ident: sel.X.(*ast.Ident), Path: RuntimePath, Name: "sanitize"},
			{Ident: inner.X.(*ast.Ident), Path: RuntimePath, Name: "sanitize"},
			{Ident: urlSel.X.(*ast.Ident), Path: "net/url", Name: "url"},
		},
	}

	s := newImportSet("example.com/p", nil, map[string]bool{"url": true})
	assert.Equal(t, "sanitize.Opt[sanitize.Pass[int], url2.URL]", renderExpr(e, s))

	lit, err := spec.ParseArgs("func(v int) (int, error) { return v, nil }")
	require.NoError(t, err)
	assert.Equal(t, "(func(v int) (int, error) { return v, nil })",
		renderExpr(spec.Expr{Node: lit.Validator, Text: lit.ValidatorText}, s))
}

func TestQuoteTag(t *testing.T) {
	assert.Equal(t, "", quoteTag(""))
	assert.Equal(t, "`json:\"a\"`", quoteTag(`json:"a"`))
	assert.Equal(t, "\"x:\\\"`\\\"\"", quoteTag("x:\"`\""))
}
