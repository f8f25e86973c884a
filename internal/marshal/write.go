package marshal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// TimeFormat is the wire format of timestamps.
const TimeFormat = time.RFC3339Nano

// TypeToData converts a tree holding rich values, application values and
// arbitrary Go values into a plain wire tree. Handler writers see each
// value before the built-in conversion, so a writer may return a rich
// value.
func (m *Marshaller) TypeToData(value any) (any, error) {
	return m.typeToData("", value)
}

func (m *Marshaller) typeToData(key string, value any) (any, error) {
	value, err := reviveMarker(value)
	if err != nil {
		return nil, err
	}

	if m.hasWriters() {
		value, err = m.applyWriters(key, value)
		if err != nil {
			return nil, err
		}
	}

	switch val := value.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return val, nil
	case map[string]any:
		out := make(map[string]any, len(val))

		for k, child := range val {
			converted, err := m.typeToData(k, child)
			if err != nil {
				return nil, err
			}

			out[k] = converted
		}

		return out, nil
	case []any:
		out := make([]any, len(val))

		for i, child := range val {
			converted, err := m.typeToData(strconv.Itoa(i), child)
			if err != nil {
				return nil, err
			}

			out[i] = converted
		}

		return out, nil
	}

	if wire, ok := richToData(value); ok {
		return wire, nil
	}

	// Structs, typed slices and maps are flattened through encoding/json.
	generic, err := Normalize(value)
	if err != nil {
		return nil, err
	}

	return m.typeToData(key, generic)
}

func reviveMarker(value any) (any, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return value, nil
	}

	revived, found, err := types.ReviveMarker(obj)
	if err != nil {
		return nil, fmt.Errorf("reviving %s value: %w", obj[types.MarkerField], err)
	}

	if found {
		return revived, nil
	}

	return value, nil
}

func (m *Marshaller) applyWriters(key string, value any) (any, error) {
	current := value

	for _, h := range m.handlers {
		if !h.AcceptsWrite(key, current) {
			continue
		}

		next, err := h.Writer(current)
		if err != nil {
			return nil, fmt.Errorf("type handler writer for %q: %w", key, err)
		}

		current = next
	}

	return current, nil
}

// richToData returns the canonical wire form of a rich value.
func richToData(value any) (any, bool) {
	switch val := value.(type) {
	case types.UUID:
		return val.String(), true
	case types.Money:
		return map[string]any{"amount": val.Amount(), "currency": val.Currency()}, true
	case types.LatLng:
		return latLngData(val), true
	case types.LatLngBounds:
		return map[string]any{"ne": latLngData(val.NE()), "sw": latLngData(val.SW())}, true
	case types.BigDecimal:
		return val.String(), true
	case time.Time:
		return val.UTC().Format(TimeFormat), true
	default:
		return nil, false
	}
}

func latLngData(p types.LatLng) map[string]any {
	return map[string]any{"lat": p.Lat(), "lng": p.Lng()}
}

// Normalize turns an arbitrary Go value into a generic tree by a JSON round
// trip. Rich values nested in structs come back as rich values.
func Normalize(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalizing %T: %w", value, err)
	}

	var generic any

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	err = dec.Decode(&generic)
	if err != nil {
		return nil, fmt.Errorf("normalizing %T: %w", value, err)
	}

	return types.Revive(generic)
}
