package invalid

//sanitize:derive
type Missing struct {
	A int `json:"a"`
}

//sanitize:derive
type Duplicate struct {
	A int `validate:"sanitize.Pass[int]" validate:"sanitize.Pass[int]"`
}

//sanitize:derive
//sanitize:validate check
//sanitize:validate check
type TwoValidators struct {
	A int `validate:"sanitize.Pass[int]"`
}

func check(TwoValidators) error { return nil }

//sanitize:derive
type Malformed struct {
	A int `validate:"sanitize.Pass[int"`
	B int `validate:""`
	C int `validate:"opt(sanitize.Pass[int]"`
}

//sanitize:derive
type TooMany struct {
	A int `validate:"sanitize.Pass[int], int, int"`
}

//sanitize:derive
type Unresolvable struct {
	A int     `validate:"nosuch.Func"`
	B int     `validate:"sanitize.Latitude"`
	C string  `validate:"sanitize.Pass[string], Nope"`
	D int     `validate:"opt(sanitize.Pass[int])"`
	E float64 `validate:"sanitize.Latitude, string"`
}

//sanitize:derive
type Shape int

//sanitize:derive
type Embedded struct {
	Missing
	lower int `validate:"sanitize.Pass[int]"`
}

//sanitize:derive
type Conflict struct {
	A int `validate:"sanitize.Pass[int]"`
}

func (c *Conflict) UnmarshalJSON([]byte) error { return nil }

//sanitize:derive
type Generic[T any] struct {
	V T
}

//sanitize:derive
type Empty struct{}
