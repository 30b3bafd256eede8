package places

import "net/url"

//sanitize:derive
//sanitize:validate checkPlace
type Place struct {
	Lat  float64  `json:"lat" validate:"sanitize.Latitude"`
	Name string   `json:"name,omitempty" validate:"sanitize.MaxText(50)"`
	Link *url.URL `json:"link" validate:"opt(sanitize.SecureURL), string"`
}

func checkPlace(p Place) (Place, error) { return p, nil }

// Grouped declarations keep per-spec doc comments.
type (
	//sanitize:derive
	Inner struct {
		A, B int `validate:"sanitize.Pass[int]"`
	}

	Plain struct{ X int }
)

//sanitize:derive
type NotAStruct int

type Embeds struct {
	Place
	*url.URL
	hidden string
}

//sanitize:derive extra
//sanitize:unknown
type Odd struct {
	Broken string `json:"broken`
}
