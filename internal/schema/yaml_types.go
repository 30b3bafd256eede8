package schema

import (
	"fmt"
	"go/token"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML decodes a struct entry, keeping the position of every
// declaration. Field order follows the file.
func (s *Struct) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a struct mapping, got %s", node.Line, kindName(node.Kind))
	}

	s.Pos = nodePos(node)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		switch key.Value {
		case "name":
			if err := value.Decode(&s.Name); err != nil {
				return err
			}

			s.Pos = nodePos(value)

		case "validate":
			entry, err := decodeEntry(value)
			if err != nil {
				return err
			}

			s.Validate = &entry

		case "fields":
			fields, err := decodeFields(value)
			if err != nil {
				return err
			}

			s.Fields = fields

		default:
			return fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}

	if s.Name == "" {
		return fmt.Errorf("line %d: struct entry without a name", node.Line)
	}

	return nil
}

// decodeFields walks the mapping node directly so that repeated keys are
// kept and surface as duplicate declarations.
func decodeFields(node *yaml.Node) ([]Field, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of field declarations, got %s", node.Line, kindName(node.Kind))
	}

	out := make([]Field, 0, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: field name must be a string", key.Line)
		}

		entry, err := decodeEntry(value)
		if err != nil {
			return nil, err
		}

		out = append(out, Field{Name: key.Value, Pos: nodePos(key), Decl: entry})
	}

	return out, nil
}

func decodeEntry(node *yaml.Node) (Entry, error) {
	if node.Kind != yaml.ScalarNode {
		return Entry{}, fmt.Errorf("line %d: expected a declaration string, got %s", node.Line, kindName(node.Kind))
	}

	text := node.Value
	if node.Tag == "!!null" {
		text = ""
	}

	return Entry{Text: text, Pos: nodePos(node)}, nil
}

// nodePos returns the position of the first byte of a node's value.
func nodePos(node *yaml.Node) token.Position {
	pos := token.Position{Line: node.Line, Column: node.Column}

	if node.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
		pos.Column++
	}

	return pos
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return "node"
	}
}
