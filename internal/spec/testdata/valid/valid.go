package valid

import (
	"errors"
	"net/url"
)

type Pair[A, B any] struct {
	First  A
	Second B
}

func firstOf(p Pair[int, string]) (int, error) { return p.First, nil }

func sex(s string) (int16, error) {
	switch s {
	case "male":
		return 1, nil
	case "female":
		return 2, nil
	}

	return 0, errors.New("unknown sex")
}

//sanitize:derive
//sanitize:validate checkPlace
type Place struct {
	Lat  float64  `json:"lat" validate:"sz.Latitude"`
	Name string   `json:"name" validate:"sz.MaxText(50)"`
	Sex  int16    `json:"sex" validate:"sex, string"`
	Link *url.URL `json:"link,omitempty" validate:"opt(sz.SecureURL), string"`
}

func checkPlace(p Place) (Place, error) { return p, nil }

//sanitize:derive
//sanitize:validate ensureOrder
type Tuple struct {
	Key   int     `json:"key" validate:"firstOf, Pair[int, string]"`
	Tags  []int   `validate:"sz.Indexes(8)" yaml:"tags"`
	Raw   []byte  `validate:"sz.Pass[[]byte]"`
	Count int     `validate:"sz.Pass"`
	Note  *string `validate:"opt(sz.MaxText(10))"`
}

func ensureOrder(t Tuple) error {
	if t.Count < 0 {
		return errors.New("negative count")
	}

	return nil
}

type Untouched struct {
	X int
}
