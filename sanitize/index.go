package sanitize

import (
	"fmt"
	"slices"
)

// Indexes returns a validator for lists of indexes into a collection of n
// elements. The list is sorted and deduplicated; every index must be in
// [0, n).
func Indexes(n int) Func[[]int, []int] {
	return func(v []int) ([]int, error) {
		v = slices.Clone(v)
		slices.Sort(v)
		v = slices.Compact(v)

		if len(v) > n {
			return nil, fmt.Errorf("bad index: expected at most %d indexes got %d", n, len(v))
		}

		if len(v) > 0 && (v[0] < 0 || v[len(v)-1] >= n) {
			bad := v[0]
			if bad >= 0 {
				bad = v[len(v)-1]
			}

			return nil, fmt.Errorf("bad index: %d is outside [0,%d)", bad, n)
		}

		return v, nil
	}
}
