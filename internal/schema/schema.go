package schema

import (
	"errors"
	"fmt"
	"go/token"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the only supported schema version.
const Version = "1"

// ErrUnsupportedVersion is returned for schema files of another version.
var ErrUnsupportedVersion = errors.New("unsupported schema version")

// File is a parsed schema file.
type File struct {
	Version string   `yaml:"version"`
	Structs []Struct `yaml:"structs"`

	// Path is the file the schema was read from.
	Path string `yaml:"-"`
}

// Struct declares validation for one struct.
type Struct struct {
	Name string
	Pos  token.Position
	// Validate is nil when no struct-level validation is declared.
	Validate *Entry
	// Fields keeps the order of the file.
	Fields []Field
}

// Field declares validation for one field.
type Field struct {
	Name string
	Pos  token.Position
	Decl Entry
}

// Entry is a declaration value and the position of its first byte.
type Entry struct {
	Text string
	Pos  token.Position
}

// LoadFile reads and parses a schema file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}

	return Parse(data, path)
}

// Parse parses schema YAML; filename is recorded in every position.
func Parse(data []byte, filename string) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %w", filename, err)
	}

	if f.Version == "" {
		f.Version = Version
	}

	if f.Version != Version {
		return nil, fmt.Errorf("%s: %w %q", filename, ErrUnsupportedVersion, f.Version)
	}

	f.Path = filename

	for i := range f.Structs {
		s := &f.Structs[i]
		s.Pos.Filename = filename

		if s.Validate != nil {
			s.Validate.Pos.Filename = filename
		}

		for j := range s.Fields {
			s.Fields[j].Pos.Filename = filename
			s.Fields[j].Decl.Pos.Filename = filename
		}
	}

	return &f, nil
}

// StructsNamed returns every entry declaring the struct name, in file order.
func (f *File) StructsNamed(name string) []*Struct {
	if f == nil {
		return nil
	}

	var out []*Struct

	for i := range f.Structs {
		if f.Structs[i].Name == name {
			out = append(out, &f.Structs[i])
		}
	}

	return out
}

// Names lists the declared struct names, without duplicates, in file order.
func (f *File) Names() []string {
	if f == nil {
		return nil
	}

	seen := make(map[string]bool, len(f.Structs))
	out := make([]string, 0, len(f.Structs))

	for _, s := range f.Structs {
		if !seen[s.Name] {
			seen[s.Name] = true
			out = append(out, s.Name)
		}
	}

	return out
}
