package sanitize

// Func is the validator contract: it maps a decoded wire value to the value
// stored in the target struct, or fails with a human-readable error.
type Func[W, T any] func(W) (T, error)

// Opt lifts f to optional values. A nil input yields a nil output without
// calling f; a present input is validated by f and wrapped again.
func Opt[W, T any](f func(W) (T, error)) func(*W) (*T, error) {
	return func(v *W) (*T, error) {
		if v == nil {
			return nil, nil
		}

		out, err := f(*v)
		if err != nil {
			return nil, err
		}

		return &out, nil
	}
}

// Pass accepts any value unchanged.
func Pass[T any](v T) (T, error) {
	return v, nil
}
