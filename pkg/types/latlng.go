package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// LatLng is a geographic point. Each coordinate is either a number (held as
// float64) or a numeric string, kept exactly as given.
type LatLng struct {
	lat any
	lng any
}

// NewLatLng validates both coordinates.
func NewLatLng(lat, lng any) (LatLng, error) {
	la, err := coordinate("lat", lat)
	if err != nil {
		return LatLng{}, err
	}

	ln, err := coordinate("lng", lng)
	if err != nil {
		return LatLng{}, err
	}

	return LatLng{lat: la, lng: ln}, nil
}

// MustLatLng is NewLatLng that panics on invalid input.
func MustLatLng(lat, lng any) LatLng {
	p, err := NewLatLng(lat, lng)
	if err != nil {
		panic(err)
	}

	return p
}

func coordinate(field string, v any) (any, error) {
	if s, ok := v.(string); ok {
		if !isNumericString(s) {
			return nil, invalid(markerLatLng, field, v, "expected a numeric string")
		}

		return s, nil
	}

	f, ok := toFloat64(v)
	if !ok {
		return nil, invalid(markerLatLng, field, v, "expected a number or numeric string")
	}

	return f, nil
}

// Lat returns the latitude as given: float64 or string.
func (p LatLng) Lat() any {
	return p.lat
}

// Lng returns the longitude as given: float64 or string.
func (p LatLng) Lng() any {
	return p.lng
}

// Float64 returns both coordinates as numbers.
func (p LatLng) Float64() (float64, float64) {
	return coordFloat(p.lat), coordFloat(p.lng)
}

func coordFloat(v any) float64 {
	switch c := v.(type) {
	case float64:
		return c
	case string:
		f, _ := strconv.ParseFloat(c, 64)

		return f
	default:
		return 0
	}
}

// String formats the point as "lat,lng".
func (p LatLng) String() string {
	return fmt.Sprintf("%v,%v", p.lat, p.lng)
}

// MarshalJSON emits {"_sdkType":"LatLng","lat":...,"lng":...}.
func (p LatLng) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		MarkerField: markerLatLng,
		"lat":       p.lat,
		"lng":       p.lng,
	})
}

// UnmarshalJSON accepts {"lat":...,"lng":...} with or without marker.
func (p *LatLng) UnmarshalJSON(data []byte) error {
	var obj map[string]any

	err := unmarshalNumber(data, &obj)
	if err != nil {
		return invalid(markerLatLng, "", string(data), "expected a {lat, lng} object")
	}

	parsed, err := NewLatLng(obj["lat"], obj["lng"])
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
