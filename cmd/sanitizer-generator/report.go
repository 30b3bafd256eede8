package main

import (
	"fmt"
	"go/types"
	"io"

	"github.com/davecgh/go-spew/spew"

	"sanitizer-generator/internal/spec"
)

type fieldReport struct {
	Name      string
	Wire      string
	Target    string
	Validator string
	Optional  bool
	Tag       string
}

type structReport struct {
	Package    string
	Name       string
	Validator  string
	ChecksOnly bool
	Fields     []fieldReport
}

// buildReports flattens specifications into printable values; type names
// are relative to the struct's package.
func buildReports(specs []*spec.PackageSpec) []structReport {
	var out []structReport

	for _, ps := range specs {
		q := types.RelativeTo(ps.Types)

		for _, s := range ps.Structs {
			r := structReport{Package: ps.Path, Name: s.Name, ChecksOnly: s.ChecksOnly}
			if s.Validator != nil {
				r.Validator = s.Validator.Text
			}

			for _, f := range s.Fields {
				r.Fields = append(r.Fields, fieldReport{
					Name:      f.Name,
					Wire:      types.TypeString(f.WireType, q),
					Target:    types.TypeString(f.TargetType, q),
					Validator: f.Validator.Text,
					Optional:  f.Optional,
					Tag:       f.Passthrough,
				})
			}

			out = append(out, r)
		}
	}

	return out
}

func printReports(w io.Writer, reports []structReport) {
	for _, r := range reports {
		fmt.Fprintf(w, "%s.%s\n", r.Package, r.Name)

		for _, f := range r.Fields {
			validator := f.Validator
			if f.Optional {
				validator = "opt(" + validator + ")"
			}

			fmt.Fprintf(w, "  %s %s <- %s via %s\n", f.Name, f.Target, f.Wire, validator)
		}

		switch {
		case r.Validator == "":
		case r.ChecksOnly:
			fmt.Fprintf(w, "  check %s\n", r.Validator)
		default:
			fmt.Fprintf(w, "  then %s\n", r.Validator)
		}
	}
}

func dumpReports(w io.Writer, reports []structReport) {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}

	cfg.Fdump(w, reports)
}
