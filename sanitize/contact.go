package sanitize

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is the region assumed for phone numbers written without an
// international prefix.
const DefaultRegion = "FR"

// emailPattern is the valid e-mail address syntax of the HTML living
// standard (input type=email).
var emailPattern = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?" +
		"(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$",
)

// ErrInvalidPhoneNumber is returned by the phone number validators for a
// number that parses but is not assigned in its region.
var ErrInvalidPhoneNumber = errors.New("invalid phone number")

// Email accepts addresses following the HTML specification.
func Email(v string) (string, error) {
	if !emailPattern.MatchString(v) {
		return "", fmt.Errorf("invalid email address %q", v)
	}

	return v, nil
}

// InternationalPhoneNumber parses v against DefaultRegion and returns the
// number in E.164 form.
func InternationalPhoneNumber(v string) (string, error) {
	return PhoneNumberIn(DefaultRegion)(v)
}

// PhoneNumberIn returns a phone number validator for the given default
// region.
func PhoneNumberIn(region string) Func[string, string] {
	return func(v string) (string, error) {
		num, err := phonenumbers.Parse(v, region)
		if err != nil {
			return "", err
		}

		if !phonenumbers.IsValidNumber(num) {
			return "", ErrInvalidPhoneNumber
		}

		return phonenumbers.Format(num, phonenumbers.E164), nil
	}
}
