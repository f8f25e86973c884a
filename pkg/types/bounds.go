package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LatLngBounds is a rectangle given by its north-east and south-west corners.
type LatLngBounds struct {
	ne LatLng
	sw LatLng
}

// NewLatLngBounds accepts each corner as a LatLng or a plain {lat, lng} map.
func NewLatLngBounds(ne, sw any) (LatLngBounds, error) {
	nePoint, err := corner("ne", ne)
	if err != nil {
		return LatLngBounds{}, err
	}

	swPoint, err := corner("sw", sw)
	if err != nil {
		return LatLngBounds{}, err
	}

	return LatLngBounds{ne: nePoint, sw: swPoint}, nil
}

func corner(field string, v any) (LatLng, error) {
	switch c := v.(type) {
	case LatLng:
		return c, nil
	case map[string]any:
		lat, hasLat := c["lat"]
		lng, hasLng := c["lng"]

		if !hasLat || !hasLng {
			return LatLng{}, invalid(markerLatLngBounds, field, v, "expected a {lat, lng} object")
		}

		p, err := NewLatLng(lat, lng)
		if err != nil {
			return LatLng{}, fmt.Errorf("%s corner: %w", field, err)
		}

		return p, nil
	default:
		return LatLng{}, invalid(markerLatLngBounds, field, v, "expected a LatLng or {lat, lng} object")
	}
}

// NE returns the north-east corner.
func (b LatLngBounds) NE() LatLng {
	return b.ne
}

// SW returns the south-west corner.
func (b LatLngBounds) SW() LatLng {
	return b.sw
}

// String formats the bounds as "ne.lat,ne.lng,sw.lat,sw.lng".
func (b LatLngBounds) String() string {
	return b.ne.String() + "," + b.sw.String()
}

// MarshalJSON emits {"_sdkType":"LatLngBounds","ne":...,"sw":...}.
func (b LatLngBounds) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		MarkerField: markerLatLngBounds,
		"ne":        b.ne,
		"sw":        b.sw,
	})
}

// UnmarshalJSON accepts {"ne":{...},"sw":{...}} with or without markers.
func (b *LatLngBounds) UnmarshalJSON(data []byte) error {
	var obj map[string]any

	err := unmarshalNumber(data, &obj)
	if err != nil {
		return invalid(markerLatLngBounds, "", string(data), "expected a {ne, sw} object")
	}

	parsed, err := NewLatLngBounds(obj["ne"], obj["sw"])
	if err != nil {
		return err
	}

	*b = parsed

	return nil
}

func unmarshalNumber(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	return dec.Decode(v)
}
