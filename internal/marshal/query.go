package marshal

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// ControlKeys are the endpoint control fields that always travel in the
// query string. A key matches by exact name or by a "name." prefix.
var ControlKeys = []string{"include", "page", "perPage", "expand", "fields", "limit"}

// IsControlKey reports whether key is hoisted into the query string.
func IsControlKey(key string) bool {
	for _, c := range ControlKeys {
		if key == c || strings.HasPrefix(key, c+".") {
			return true
		}
	}

	return false
}

// HoistQuery splits params into control fields, serialized as query
// values, and the remaining body fields. Nil control values are dropped.
func HoistQuery(params map[string]any) (url.Values, map[string]any) {
	query := url.Values{}
	body := make(map[string]any, len(params))

	for key, value := range params {
		if !IsControlKey(key) {
			body[key] = value

			continue
		}

		if value == nil {
			continue
		}

		query.Set(key, QueryValue(value))
	}

	return query, body
}

// EncodeQuery serializes every param as a query value.
func EncodeQuery(params map[string]any) url.Values {
	query := url.Values{}

	for key, value := range params {
		if value == nil {
			continue
		}

		query.Set(key, QueryValue(value))
	}

	return query
}

// QueryValue renders a value for the query string. Lists are comma-joined
// and rich values use their compact text forms.
func QueryValue(value any) string {
	switch val := value.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case types.UUID:
		return val.String()
	case types.LatLng:
		return val.String()
	case types.LatLngBounds:
		return val.String()
	case types.Money:
		return strconv.FormatInt(val.Amount(), 10) + "," + val.Currency()
	case types.BigDecimal:
		return val.String()
	case time.Time:
		return val.UTC().Format(TimeFormat)
	case []string:
		return strings.Join(val, ",")
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = QueryValue(item)
		}

		return strings.Join(parts, ",")
	default:
		rv := reflect.ValueOf(val)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return fmt.Sprint(val)
		}

		parts := make([]string, rv.Len())
		for i := range rv.Len() {
			parts[i] = QueryValue(rv.Index(i).Interface())
		}

		return strings.Join(parts, ",")
	}
}
