package sanitize

import (
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrEmptyText is returned for text that is empty once trimmed.
	ErrEmptyText = errors.New("expected a non empty string")
	// ErrTextTooLong is returned by MaxText when the trimmed text exceeds
	// its limit.
	ErrTextTooLong = errors.New("text too long")
)

// MaxText returns a validator accepting trimmed, non-empty text of at most
// n bytes. The returned text is the trimmed input.
func MaxText(n int) Func[string, string] {
	return func(s string) (string, error) {
		s = strings.TrimSpace(s)

		switch {
		case s == "":
			return "", ErrEmptyText
		case len(s) > n:
			return "", fmt.Errorf("%w: expected string of at most %dB got %dB", ErrTextTooLong, n, len(s))
		default:
			return s, nil
		}
	}
}

// StrictText is MaxText applied after stripping every HTML element from the
// input.
func StrictText(n int) Func[string, string] {
	policy := bluemonday.StrictPolicy()
	bounded := MaxText(n)

	return func(s string) (string, error) {
		return bounded(policy.Sanitize(s))
	}
}
