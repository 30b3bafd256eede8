package analyze

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"strconv"
	"strings"
)

// ErrMalformedTag is returned for struct tags not in key:"value" form.
var ErrMalformedTag = errors.New("malformed struct tag")

// TagPair is one key:"value" entry of a struct tag.
type TagPair struct {
	Key   string
	Value string         // Unquoted value
	Raw   string         // Verbatim key:"value" text
	Pos   token.Position // Position of the first byte of Value
}

// Tag is a struct tag split into its entries, in source order. Unlike
// reflect.StructTag, repeated keys are all kept.
type Tag []TagPair

// Lookup returns every entry with the given key.
func (t Tag) Lookup(key string) []TagPair {
	var out []TagPair

	for _, p := range t {
		if p.Key == key {
			out = append(out, p)
		}
	}

	return out
}

// Without renders the tag with every entry under the given keys removed,
// leaving the remaining entries verbatim.
func (t Tag) Without(keys ...string) string {
	parts := make([]string, 0, len(t))

	for _, p := range t {
		skip := false

		for _, k := range keys {
			if p.Key == k {
				skip = true
				break
			}
		}

		if !skip {
			parts = append(parts, p.Raw)
		}
	}

	return strings.Join(parts, " ")
}

// ParseTagLit parses the struct tag literal of a field. Positions are mapped
// back to the literal; for interpreted (double-quoted) literals containing
// escapes they are approximate.
func ParseTagLit(fset *token.FileSet, lit *ast.BasicLit) (Tag, token.Position, error) {
	if lit == nil {
		return nil, token.Position{}, nil
	}

	litPos := fset.Position(lit.Pos())

	content, err := strconv.Unquote(lit.Value)
	if err != nil {
		return nil, litPos, fmt.Errorf("%w: %w", ErrMalformedTag, err)
	}

	base := advance(litPos, lit.Value[:1])

	tag, err := ParseTag(content, base)

	return tag, litPos, err
}

// ParseTag splits an unquoted struct tag whose first byte is at base.
func ParseTag(tag string, base token.Position) (Tag, error) {
	var (
		out  Tag
		off  int
		full = tag
	)

	for {
		// Skip leading space.
		i := 0
		for i < len(tag) && tag[i] == ' ' {
			i++
		}

		tag = tag[i:]
		off += i

		if tag == "" {
			break
		}

		// Scan to colon. A space, a quote or a control character is a syntax error.
		i = 0
		for i < len(tag) && tag[i] > ' ' && tag[i] != ':' && tag[i] != '"' && tag[i] != 0x7f {
			i++
		}

		if i == 0 || i+1 >= len(tag) || tag[i] != ':' || tag[i+1] != '"' {
			return out, fmt.Errorf("%w: bad syntax at %q", ErrMalformedTag, tag)
		}

		key := tag[:i]
		start := off

		// Scan quoted string to find value.
		j := i + 2
		for j < len(tag) && tag[j] != '"' {
			if tag[j] == '\\' {
				j++
			}

			j++
		}

		if j >= len(tag) {
			return out, fmt.Errorf("%w: unterminated value for key %q", ErrMalformedTag, key)
		}

		qvalue := tag[i+1 : j+1]

		value, err := strconv.Unquote(qvalue)
		if err != nil {
			return out, fmt.Errorf("%w: bad value for key %q: %w", ErrMalformedTag, key, err)
		}

		out = append(out, TagPair{
			Key:   key,
			Value: value,
			Raw:   tag[:j+1],
			Pos:   advance(base, full[:start+i+2]),
		})

		tag = tag[j+1:]
		off += j + 1
	}

	return out, nil
}

// Advance returns the position reached after text, starting at pos.
func Advance(pos token.Position, text string) token.Position {
	return advance(pos, text)
}

func advance(pos token.Position, text string) token.Position {
	if !pos.IsValid() {
		return pos
	}

	for i := 0; i < len(text); i++ {
		pos.Offset++

		if text[i] == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}

	return pos
}
