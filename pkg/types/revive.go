package types

// ReviveMarker rebuilds a rich value from a plain map carrying the private
// _sdkType marker field. It reports false when m carries no known marker.
func ReviveMarker(m map[string]any) (any, bool, error) {
	marker, ok := m[MarkerField].(string)
	if !ok {
		return nil, false, nil
	}

	switch marker {
	case markerUUID:
		u, err := ParseUUID(map[string]any{"uuid": m["uuid"]})

		return u, true, err
	case markerMoney:
		money, err := NewMoney(m["amount"], stringField(m, "currency"))

		return money, true, err
	case markerLatLng:
		p, err := NewLatLng(m["lat"], m["lng"])

		return p, true, err
	case markerLatLngBounds:
		ne, err := reviveCorner(m["ne"])
		if err != nil {
			return nil, true, err
		}

		sw, err := reviveCorner(m["sw"])
		if err != nil {
			return nil, true, err
		}

		b, err := NewLatLngBounds(ne, sw)

		return b, true, err
	case markerBigDecimal:
		d, err := NewBigDecimal(stringField(m, "value"))

		return d, true, err
	default:
		return nil, false, nil
	}
}

func reviveCorner(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return v, nil
	}

	revived, found, err := ReviveMarker(m)
	if err != nil {
		return nil, err
	}

	if found {
		return revived, nil
	}

	return m, nil
}

// Revive walks a generic tree and rebuilds every marker-carrying map into
// its rich value. The input is not modified.
func Revive(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		revived, found, err := ReviveMarker(val)
		if err != nil {
			return nil, err
		}

		if found {
			return revived, nil
		}

		out := make(map[string]any, len(val))

		for key, child := range val {
			converted, err := Revive(child)
			if err != nil {
				return nil, err
			}

			out[key] = converted
		}

		return out, nil
	case []any:
		out := make([]any, len(val))

		for i, child := range val {
			converted, err := Revive(child)
			if err != nil {
				return nil, err
			}

			out[i] = converted
		}

		return out, nil
	default:
		return v, nil
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)

	return s
}
