package sanitize

import (
	"errors"
	"net/url"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

var (
	// ErrNotHTTPS is returned by SecureURL for a URL with another scheme.
	ErrNotHTTPS = errors.New("not https")
	// ErrInvalidJSON is returned by JSONDocument for malformed JSON.
	ErrInvalidJSON = errors.New("invalid json document")
)

// SecureURL parses v and accepts it only over https.
func SecureURL(v string) (url.URL, error) {
	u, err := url.Parse(v)
	if err != nil {
		return url.URL{}, err
	}

	if u.Scheme != "https" {
		return url.URL{}, ErrNotHTTPS
	}

	return *u, nil
}

// UUID parses v in any of the forms accepted by uuid.Parse.
func UUID(v string) (uuid.UUID, error) {
	return uuid.Parse(v)
}

// JSONDocument accepts raw bytes holding a single well-formed JSON value.
func JSONDocument(v []byte) ([]byte, error) {
	if !gjson.ValidBytes(v) {
		return nil, ErrInvalidJSON
	}

	return v, nil
}
