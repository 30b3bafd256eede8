// Package gen synthesizes the deserialization code of resolved structs.
//
// Generation approach uses text/template + go/format. For every struct the
// generated file holds:
//   - an unexported raw record (placeRaw for Place, suffixed on a name
//     clash) with one field per struct field, typed by the wire type and
//     carrying the pass-through struct tag;
//   - a conversion method running the field validators in declaration
//     order, stopping at the first failure, then the struct validator;
//   - UnmarshalJSON (encoding/json or goccy/go-json) and, optionally,
//     UnmarshalYAML glue decoding into the raw record first. A JSON null
//     leaves the target unchanged.
package gen
