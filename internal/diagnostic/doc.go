// Package diagnostic provides location-bound errors and warnings for the
// sanitizer generator.
//
// Every failure found while reading declarations is reported against the
// source position of the offending struct, field, struct tag or schema entry,
// so users fix their declarations instead of debugging generated code.
//
// Categories:
//   - Shape mismatch (not a struct with named, exported fields)
//   - Missing validation on a field
//   - Duplicate validation (field or struct level)
//   - Malformed argument list
//   - Too many arguments
//   - Unresolvable validator or type reference
package diagnostic
