package gen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/format"
	"go/types"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"sanitizer-generator/internal/analyze"
	"sanitizer-generator/internal/spec"
)

// RuntimePath is the import path of the runtime package used by generated
// code.
const RuntimePath = analyze.RuntimePath

// FileSuffix ends the name of every generated file.
const FileSuffix = "_sanitize.go"

// JSONFramework selects the JSON package of the generated UnmarshalJSON.
type JSONFramework string

const (
	JSONStd   JSONFramework = "std"
	JSONGoccy JSONFramework = "goccy"
)

// ParseJSONFramework validates a -json flag value.
func ParseJSONFramework(s string) (JSONFramework, error) {
	switch JSONFramework(s) {
	case JSONStd, JSONGoccy:
		return JSONFramework(s), nil
	default:
		return "", fmt.Errorf("unknown JSON framework %q (want %s or %s)", s, JSONStd, JSONGoccy)
	}
}

func (f JSONFramework) importPath() (path, name string) {
	if f == JSONGoccy {
		return "github.com/goccy/go-json", "json"
	}

	return "encoding/json", "json"
}

const yamlPath = "gopkg.in/yaml.v3"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// JSON is the framework used by UnmarshalJSON.
	JSON JSONFramework
	// YAML enables UnmarshalYAML generation.
	YAML bool
	// OutputDir receives the unformatted sidecar when formatting fails.
	// Empty means the package directory.
	OutputDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		JSON: JSONStd,
	}
}

// Generator synthesizes Go code from resolved package specifications.
type Generator struct {
	config GeneratorConfig
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	if config.JSON == "" {
		config.JSON = JSONStd
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "places_sanitize.go").
	Filename string
	// Dir is the directory of the package the file belongs to.
	Dir string
	// Content is the formatted Go source code.
	Content []byte
}

// Filename returns the name of the file generated for a package.
func Filename(pkgName string) string {
	return pkgName + FileSuffix
}

// Generate synthesizes the file of one package. Packages without structs
// yield no file.
func (g *Generator) Generate(ps *spec.PackageSpec) (*GeneratedFile, error) {
	if len(ps.Structs) == 0 {
		return nil, nil
	}

	data := g.templateData(ps)
	file := &GeneratedFile{Filename: Filename(ps.Name), Dir: ps.Dir}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		outDir := g.config.OutputDir
		if outDir == "" {
			outDir = ps.Dir
		}

		_ = writeDebugUnformatted(outDir, file.Filename, buf.Bytes())

		file.Content = buf.Bytes()

		return file, fmt.Errorf("formatting code: %w", err)
	}

	file.Content = formatted

	return file, nil
}

// templateData names the raw records and locals so that they collide with
// nothing declared in the package or referenced by a declaration.
func (g *Generator) templateData(ps *spec.PackageSpec) *templateData {
	taken := make(map[string]bool)
	for _, name := range ps.Types.Scope().Names() {
		taken[name] = true
	}

	for _, s := range ps.Structs {
		for _, f := range s.Fields {
			exprNames(f.Validator, taken)
		}

		if s.Validator != nil {
			exprNames(*s.Validator, taken)
		}
	}

	raws := make([]string, len(ps.Structs))
	for i, s := range ps.Structs {
		raws[i] = freeName(rawName(s.Name), taken)
	}

	data := &templateData{
		Header:      analyze.GeneratedHeader,
		PackageName: ps.Name,
		Raw:         freeName("raw", taken),
		Out:         freeName("out", taken),
		Err:         freeName("err", taken),
		Data:        freeName("data", taken),
		Node:        freeName("node", taken),
		Dst:         freeName("dst", taken),
	}

	imports := newImportSet(ps.Path, ps.Types.Scope().Names(), taken)

	if needsRuntime(ps) {
		data.RT = imports.qualifier(RuntimePath, "sanitize")
	}

	data.JSON = imports.qualifier(g.config.JSON.importPath())

	if g.config.YAML {
		data.YAML = imports.qualifier(yamlPath, "yaml")
	}

	qualify := func(t types.Type) string {
		return types.TypeString(t, func(p *types.Package) string {
			if p.Path() == ps.Path {
				return ""
			}

			return imports.add(p.Path(), p.Name())
		})
	}

	for i, s := range ps.Structs {
		sd := structData{Name: s.Name, RawName: raws[i], ChecksOnly: s.ChecksOnly}

		for _, f := range s.Fields {
			validator := renderExpr(f.Validator, imports)
			call := fmt.Sprintf("%s(%s.%s)", validator, data.Raw, f.Name)
			if f.Optional {
				call = fmt.Sprintf("%sOpt[%s, %s](%s)(%s.%s)",
					data.RT, qualify(f.InnerWire), qualify(f.Result), renderText(f.Validator, imports), data.Raw, f.Name)
			}

			sd.Fields = append(sd.Fields, fieldData{
				Name:     f.Name,
				WireType: qualify(f.WireType),
				Tag:      quoteTag(f.Passthrough),
				Call:     call,
			})
		}

		if s.Validator != nil {
			sd.Validator = renderExpr(*s.Validator, imports)
		}

		data.Structs = append(data.Structs, sd)
	}

	data.Imports = imports.specs()

	return data
}

// needsRuntime reports whether any conversion method can fail.
func needsRuntime(ps *spec.PackageSpec) bool {
	for _, s := range ps.Structs {
		if len(s.Fields) > 0 || s.Validator != nil {
			return true
		}
	}

	return false
}

// rawName names the unexported raw record of a struct.
func rawName(name string) string {
	r, size := utf8.DecodeRuneInString(name)

	return string(unicode.ToLower(r)) + name[size:] + "Raw"
}

// exprNames adds the identifiers of e to names. Package identifiers are
// skipped: they are renamed to their import names.
func exprNames(e spec.Expr, names map[string]bool) {
	if e.Node == nil {
		return
	}

	refs := make(map[*ast.Ident]bool, len(e.Refs))
	for _, r := range e.Refs {
		refs[r.Ident] = true
	}

	ast.Inspect(e.Node, func(n ast.Node) bool {
		if id, ok := n.(*ast.Ident); ok && !refs[id] {
			names[id.Name] = true
		}

		return true
	})
}

// freeName returns base, or base followed by the smallest number >= 2 that
// is not taken, and marks the result taken.
func freeName(base string, taken map[string]bool) string {
	name := base
	for i := 2; taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}

	taken[name] = true

	return name
}

// renderText rewrites the package identifiers of a declaration to the
// names they are imported under in the generated file.
func renderText(e spec.Expr, imports *importSet) string {
	refs := make([]spec.PkgRef, len(e.Refs))
	copy(refs, e.Refs)

	// Parsed declarations start at offset 0 of a file with base 1.
	sort.Slice(refs, func(i, j int) bool { return refs[i].Ident.Pos() > refs[j].Ident.Pos() })

	text := e.Text

	for _, ref := range refs {
		off := int(ref.Ident.Pos()) - 1
		if off < 0 || off+len(ref.Ident.Name) > len(text) || text[off:off+len(ref.Ident.Name)] != ref.Ident.Name {
			continue
		}

		text = text[:off] + imports.add(ref.Path, ref.Name) + text[off+len(ref.Ident.Name):]
	}

	return text
}

// renderExpr renders a declaration so that it can be called directly.
func renderExpr(e spec.Expr, imports *importSet) string {
	text := renderText(e, imports)
	if isPrimary(e.Node) {
		return text
	}

	return "(" + text + ")"
}

// isPrimary reports whether a call can be appended to node without
// parentheses.
func isPrimary(node ast.Expr) bool {
	switch node.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr, *ast.CallExpr, *ast.ParenExpr:
		return true
	default:
		return false
	}
}

func quoteTag(tag string) string {
	if tag == "" {
		return ""
	}

	if strings.Contains(tag, "`") {
		return strconv.Quote(tag)
	}

	return "`" + tag + "`"
}

// StaleFile returns the path of a previously generated file in dir for
// pkgName, or "" when there is none.
func StaleFile(dir, pkgName string) string {
	path := filepath.Join(dir, Filename(pkgName))
	if analyze.IsGeneratedFile(path) {
		return path
	}

	return ""
}
