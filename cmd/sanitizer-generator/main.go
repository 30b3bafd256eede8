// Package main provides the CLI entrypoint for sanitizer-generator.
//
// sanitizer-generator turns annotated structs into validating deserializers:
//   - Parses Go packages (AST + go/types) to find //sanitize:derive structs
//   - Resolves the validation declared by struct tags, directives and an
//     optional YAML schema
//   - Generates a raw record, a conversion method and UnmarshalJSON /
//     UnmarshalYAML glue per struct
//
// It is meant to run from go generate:
//
//	//go:generate go run sanitizer-generator/cmd/sanitizer-generator gen -yaml
package main

import (
	"fmt"
	"io"
	"os"
)

const usageText = `sanitizer-generator - validating deserializers for annotated Go structs

Usage:
  sanitizer-generator gen     [flags] [packages]   generate <pkg>_sanitize.go files
  sanitizer-generator check   [flags] [packages]   report diagnostics only
  sanitizer-generator analyze [flags] [packages]   print resolved declarations

Run a command with -h for its flags. Logging is configured with
LOGGING_LEVEL (DEBUG, INFO, WARN, ERROR) and LOGGING_FORMAT (CONSOLE, JSON).
`

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprint(stderr, usageText)
		return exitUsage
	}

	c := newCLI(stdout, stderr)
	defer c.log.Sync() //nolint:errcheck

	switch args[0] {
	case "gen":
		return c.gen(args[1:])
	case "check":
		return c.check(args[1:])
	case "analyze":
		return c.analyze(args[1:])
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usageText)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usageText)
		return exitUsage
	}
}
