package sanitize

import "fmt"

// Latitude accepts coordinates in [-90, 90].
func Latitude(lat float64) (float64, error) {
	if lat < -90 || lat > 90 {
		return 0, fmt.Errorf("invalid latitude expected [-90,90] got %v", lat)
	}

	return lat, nil
}

// Longitude accepts coordinates in [-180, 180].
func Longitude(lng float64) (float64, error) {
	if lng < -180 || lng > 180 {
		return 0, fmt.Errorf("invalid longitude expected [-180,180] got %v", lng)
	}

	return lng, nil
}
