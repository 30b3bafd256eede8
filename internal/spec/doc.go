// Package spec turns validation declarations into resolved specifications.
//
// It is the declaration parser and field specification resolver of the
// generator. Declarations come from three places:
//   - struct tags:           Lat float64 `validate:"sanitize.Latitude"`
//   - doc comment directives: //sanitize:validate checkPlace
//   - an optional YAML schema (package schema)
//
// Each field must carry exactly one declaration and each struct at most one.
// Argument lists are tokenized with go/scanner and parsed by a small
// recursive-descent parser, so nested type syntax such as Pair[int, string]
// is never split on its commas. References are then type-checked with
// go/types in the scope of the declaring file, and every failure is reported
// as a diagnostic bound to the declaration's position.
package spec
