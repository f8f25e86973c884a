package marshal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// Keys whose values are read as Money.
var moneyKeys = map[string]bool{
	"price":       true,
	"payinTotal":  true,
	"payoutTotal": true,
	"lineTotal":   true,
	"unitPrice":   true,
}

// Keys whose values are read as timestamps.
var timeKeys = map[string]bool{
	"start":        true,
	"end":          true,
	"displayStart": true,
	"displayEnd":   true,
	"createdAt":    true,
	"at":           true,
	"expiresAt":    true,
}

const (
	idKey          = "id"
	geolocationKey = "geolocation"
)

// applyKeyRule converts value by its key name. Only the id rule can fail;
// the other rules leave a value they cannot convert unchanged.
func applyKeyRule(key string, value any) (any, bool, error) {
	if value == nil || types.IsRich(value) {
		return value, false, nil
	}

	switch {
	case key == idKey:
		id, err := types.ParseUUID(value)
		if err != nil {
			return nil, false, fmt.Errorf("converting id: %w", err)
		}

		return id, true, nil
	case moneyKeys[key]:
		obj, ok := value.(map[string]any)
		if !ok {
			return value, false, nil
		}

		money, err := types.NewMoney(obj["amount"], stringValue(obj["currency"]))
		if err != nil {
			return value, false, nil //nolint:nilerr // unconvertible values pass through
		}

		return money, true, nil
	case timeKeys[key]:
		s, ok := value.(string)
		if !ok {
			return value, false, nil
		}

		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return value, false, nil //nolint:nilerr // unconvertible values pass through
		}

		return ts.UTC(), true, nil
	case key == geolocationKey:
		obj, ok := value.(map[string]any)
		if !ok {
			return value, false, nil
		}

		point, err := types.NewLatLng(obj["lat"], obj["lng"])
		if err != nil {
			return value, false, nil //nolint:nilerr // unconvertible values pass through
		}

		return point, true, nil
	default:
		return value, false, nil
	}
}

// applyShapeRule converts a plain object with exactly the keys of a known
// shape.
func applyShapeRule(obj map[string]any) (any, bool) {
	if len(obj) != 2 {
		return nil, false
	}

	switch {
	case hasKeys(obj, "lat", "lng"):
		point, err := types.NewLatLng(obj["lat"], obj["lng"])

		return point, err == nil
	case hasKeys(obj, "ne", "sw"):
		bounds, err := types.NewLatLngBounds(obj["ne"], obj["sw"])

		return bounds, err == nil
	case hasKeys(obj, "amount", "currency"):
		money, err := types.NewMoney(obj["amount"], stringValue(obj["currency"]))

		return money, err == nil
	default:
		return nil, false
	}
}

func hasKeys(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			return false
		}
	}

	return true
}

func stringValue(v any) string {
	s, _ := v.(string)

	return s
}

// plainNumber turns a json.Number leaf into int64 or float64.
func plainNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}

	if i, err := n.Int64(); err == nil {
		return i
	}

	if f, err := n.Float64(); err == nil {
		return f
	}

	return v
}
