package places

import sanitize "strings"

var upper = sanitize.ToUpper

type Local struct {
	S string `validate:"sanitize.ToUpper"`
}
