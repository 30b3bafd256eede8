package places

// The import is only named by declarations.
import sz "sanitizer-generator/sanitize"

type Legacy struct {
	A int `validate:"sz.Pass[int]"`
}
