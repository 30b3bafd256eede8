package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"sanitizer-generator/internal/analyze"
	"sanitizer-generator/internal/gen"
	"sanitizer-generator/internal/logger"
	"sanitizer-generator/internal/schema"
	"sanitizer-generator/internal/spec"
)

type cli struct {
	stdout io.Writer
	stderr io.Writer
	log    *zap.Logger
}

func newCLI(stdout, stderr io.Writer) *cli {
	return &cli{stdout: stdout, stderr: stderr, log: logger.FromEnv(stderr)}
}

// options holds the flags shared by every command.
type options struct {
	dir       string
	patterns  []string
	types     string
	tag       string
	schema    string
	json      string
	yaml      bool
	buildTags string
	imports   string

	// gen
	out    string
	stdout bool

	// analyze
	dump bool
}

func (c *cli) flagSet(name string, o *options) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)

	fs.StringVar(&o.dir, "dir", "", "directory package patterns are relative to (default: current)")
	fs.StringVar(&o.types, "type", "", "comma-separated struct names to process (default: //sanitize:derive structs)")
	fs.StringVar(&o.tag, "tag", spec.DefaultTagKey, "struct tag key holding field declarations")
	fs.StringVar(&o.schema, "schema", "", "YAML schema file with additional declarations")
	fs.StringVar(&o.json, "json", string(gen.JSONStd), "JSON package of UnmarshalJSON: std or goccy")
	fs.BoolVar(&o.yaml, "yaml", false, "also generate UnmarshalYAML (gopkg.in/yaml.v3)")
	fs.StringVar(&o.buildTags, "tags", "", "comma-separated build tags used when loading packages")
	fs.StringVar(&o.imports, "import", "", "comma-separated packages declarations may name without importing them, as path or name=path")

	return fs
}

func (c *cli) parse(fs *flag.FlagSet, o *options, args []string) bool {
	if err := fs.Parse(args); err != nil {
		return false
	}

	o.patterns = fs.Args()
	if len(o.patterns) == 0 {
		o.patterns = []string{"."}
	}

	return true
}

func splitCSV(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}

var errDiagnostics = errors.New("declarations have errors")

// resolve loads the packages and builds their specifications. Diagnostics
// of every package are printed before returning; any error diagnostic
// yields errDiagnostics and no specification.
func (c *cli) resolve(o *options) ([]*spec.PackageSpec, error) {
	var sf *schema.File

	if o.schema != "" {
		var err error

		sf, err = schema.LoadFile(o.schema)
		if err != nil {
			return nil, err
		}
	}

	a := analyze.NewAnalyzer()
	a.Dir = o.dir

	var imports []analyze.Import

	for _, s := range splitCSV(o.imports) {
		imp, err := analyze.ParseImport(s)
		if err != nil {
			return nil, err
		}

		imports = append(imports, imp)
	}

	a.Imports = append(imports, a.Imports...)

	if o.buildTags != "" {
		a.BuildFlags = []string{"-tags=" + o.buildTags}
	}

	c.log.Debug("loading packages", zap.Strings("patterns", o.patterns))

	pkgs, err := a.LoadPackages(o.patterns...)
	if err != nil {
		return nil, err
	}

	if sf != nil && len(pkgs) != 1 {
		return nil, fmt.Errorf("-schema applies to a single package, %d matched", len(pkgs))
	}

	opts := spec.Options{
		TagKey: o.tag,
		Types:  splitCSV(o.types),
		Schema: sf,
		YAML:   o.yaml,
	}

	var (
		all   = *spec.MissingTypes(pkgs, opts)
		specs []*spec.PackageSpec
	)

	for _, pkg := range pkgs {
		ps, diags := spec.Build(pkg, opts)
		all.Merge(*diags)

		if ps != nil {
			c.log.Debug("resolved package", zap.String("package", ps.Path), zap.Int("structs", len(ps.Structs)))
			specs = append(specs, ps)
		}
	}

	all.Sort()

	for _, d := range all.All() {
		fmt.Fprintln(c.stderr, d.String())
	}

	if all.HasErrors() {
		fmt.Fprintf(c.stderr, "%d error(s), %d warning(s)\n", len(all.Errors), len(all.Warnings))
		return nil, errDiagnostics
	}

	return specs, nil
}

func (c *cli) fail(err error) int {
	if !errors.Is(err, errDiagnostics) {
		fmt.Fprintln(c.stderr, "error:", err)
	}

	return exitFailure
}

func (c *cli) gen(args []string) int {
	var o options

	fs := c.flagSet("gen", &o)
	fs.StringVar(&o.out, "out", "", "output directory (default: next to the package sources)")
	fs.BoolVar(&o.stdout, "stdout", false, "print generated code instead of writing files")

	if !c.parse(fs, &o, args) {
		return exitUsage
	}

	framework, err := gen.ParseJSONFramework(o.json)
	if err != nil {
		fmt.Fprintln(c.stderr, err)
		return exitUsage
	}

	specs, err := c.resolve(&o)
	if err != nil {
		return c.fail(err)
	}

	g := gen.NewGenerator(gen.GeneratorConfig{JSON: framework, YAML: o.yaml, OutputDir: o.out})

	var (
		files []gen.GeneratedFile
		empty []*spec.PackageSpec
	)

	for _, ps := range specs {
		file, err := g.Generate(ps)
		if err != nil {
			return c.fail(fmt.Errorf("generating %s: %w", ps.Path, err))
		}

		if file == nil {
			empty = append(empty, ps)
			continue
		}

		files = append(files, *file)
	}

	if o.stdout {
		for _, f := range files {
			if _, err := c.stdout.Write(f.Content); err != nil {
				return c.fail(err)
			}
		}

		return exitOK
	}

	paths, err := gen.WriteFiles(files, o.out)
	for _, p := range paths {
		c.log.Info("wrote file", zap.String("path", p))
	}

	if err != nil {
		return c.fail(err)
	}

	for _, ps := range empty {
		dir := o.out
		if dir == "" {
			dir = ps.Dir
		}

		removed, err := gen.RemoveStale(dir, ps.Name)
		if err != nil {
			return c.fail(err)
		}

		if removed {
			c.log.Info("removed stale file", zap.String("package", ps.Path), zap.String("file", gen.Filename(ps.Name)))
		} else {
			c.log.Warn("no struct to generate", zap.String("package", ps.Path))
		}
	}

	return exitOK
}

func (c *cli) check(args []string) int {
	var o options

	if !c.parse(c.flagSet("check", &o), &o, args) {
		return exitUsage
	}

	specs, err := c.resolve(&o)
	if err != nil {
		return c.fail(err)
	}

	n := 0
	for _, ps := range specs {
		n += len(ps.Structs)
	}

	fmt.Fprintf(c.stdout, "ok: %d struct(s) in %d package(s)\n", n, len(specs))

	return exitOK
}

func (c *cli) analyze(args []string) int {
	var o options

	fs := c.flagSet("analyze", &o)
	fs.BoolVar(&o.dump, "dump", false, "dump the resolved declarations with go-spew")

	if !c.parse(fs, &o, args) {
		return exitUsage
	}

	specs, err := c.resolve(&o)
	if err != nil {
		return c.fail(err)
	}

	reports := buildReports(specs)

	if o.dump {
		dumpReports(c.stdout, reports)
		return exitOK
	}

	printReports(c.stdout, reports)

	return exitOK
}
