package gen

import (
	"sort"
	"strconv"

	"sanitizer-generator/internal/common"
)

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// importSet assigns one local name per imported package. Names never
// collide with package-scope declarations, generated locals or each other.
type importSet struct {
	self     string
	reserved map[string]bool
	byPath   map[string]importSpec
	local    map[string]string
}

func newImportSet(self string, scope []string, locals map[string]bool) *importSet {
	s := &importSet{
		self:     self,
		reserved: make(map[string]bool, len(scope)+len(locals)),
		byPath:   make(map[string]importSpec),
		local:    make(map[string]string),
	}

	for _, name := range scope {
		s.reserved[name] = true
	}

	for name := range locals {
		s.reserved[name] = true
	}

	return s
}

// add imports path and returns its local name; name is the package's
// declared name, or empty for the last path element. The generated package
// itself needs no qualifier.
func (s *importSet) add(path, name string) string {
	if path == s.self {
		return ""
	}

	if name == "" {
		name = common.PkgAlias(path)
	}

	if local, ok := s.local[path]; ok {
		return local
	}

	local := name
	for i := 2; s.reserved[local]; i++ {
		local = name + strconv.Itoa(i)
	}

	s.reserved[local] = true
	s.local[path] = local

	spec := importSpec{Path: path}
	if local != name {
		spec.Alias = local
	}

	s.byPath[path] = spec

	return local
}

// qualifier returns the selector prefix ("name.") for path, or "" when
// path is the generated package.
func (s *importSet) qualifier(path, name string) string {
	if local := s.add(path, name); local != "" {
		return local + "."
	}

	return ""
}

// specs returns the imports sorted by path.
func (s *importSet) specs() []importSpec {
	out := make([]importSpec, 0, len(s.byPath))
	for _, spec := range s.byPath {
		out = append(out, spec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Path < out[j].Path
	})

	return out
}
