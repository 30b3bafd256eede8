package shapes

import (
	"errors"
	"net/url"
)

// json takes the name of the JSON package.
var json = 1

func out(v int) (int, error) { return v, nil }

//sanitize:derive
//sanitize:validate checkPoint
type Point struct {
	X     int      `json:"x" validate:"out"`
	Name  string   `json:"name" validate:"sz.MaxText(5)"`
	Link  *url.URL `json:"link" validate:"opt(sz.SecureURL), string"`
	Count int      `json:"count" validate:"sz.Pass"`
	Note  *string  `json:"note" validate:"opt(sz.Pass)"`
	Odd   int      `validate:"func(v int) (int, error) { return v, nil }"`
}

func checkPoint(p Point) error {
	if p.X < 0 {
		return errors.New("negative x")
	}

	return nil
}

//sanitize:derive
type Empty struct{}

type Clash struct {
	A int `validate:"sz.Pass[int]"`
}

type clashRaw struct{}
