package sanitize

import "errors"

// Error is returned by generated deserializers when a validator rejects a
// value. Its message is the validator's message; Struct and Field locate the
// failure (Field is empty for the struct-level validator).
type Error struct {
	Struct string
	Field  string
	Err    error
}

// Error returns the validator's message.
func (e *Error) Error() string {
	if e.Err == nil {
		return "validation failed"
	}

	return e.Err.Error()
}

// Unwrap returns the validator's error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Custom wraps a validator failure into the error surfaced by the
// deserializer. A nil err yields nil.
func Custom(structName, field string, err error) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) && already.Struct == structName && already.Field == field {
		return err
	}

	return &Error{Struct: structName, Field: field, Err: err}
}
