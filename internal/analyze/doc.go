// Package analyze loads Go packages and extracts the declarations the
// sanitizer generator works from.
//
// It uses golang.org/x/tools/go/packages with AST and go/types. For every
// top-level type it records:
//   - //sanitize: directives from the doc comment (derive, validate)
//   - for structs, each field with its type, exported/embedded flags and
//     its struct tag split into key:"value" pairs with source positions
//
// Files previously written by the generator are masked while loading, so a
// stale generated file never prevents regeneration.
//
// Declarations may name the runtime package (and any other Analyzer.Imports
// entry) without the declaring file importing it. The import is loaded with
// the packages and visible at each TypeDecl.ScopePos; a file that does import
// it only for its struct tags does not fail with "imported and not used".
package analyze
