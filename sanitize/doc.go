// Package sanitize is the runtime half of sanitizer-generator.
//
// Generated deserializers call into this package: every field validator has
// the shape
//
//	func(W) (T, error)
//
// where W is the wire type decoded by the serialization framework and T is
// the type stored in the final struct. Validators are plain functions, so any
// function with that shape can be referenced from a declaration.
//
// The package also ships a small reference library of validators:
//   - MaxText, StrictText: trimmed, bounded, non-empty text
//   - Indexes: sorted unique indexes below a bound
//   - Pass: identity
//   - Email, InternationalPhoneNumber, SecureURL, UUID, JSONDocument
//   - Latitude, Longitude: geographic coordinate ranges
package sanitize
