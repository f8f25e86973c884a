package types

import (
	"encoding/json"
	"regexp"
)

var decimalPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// BigDecimal is an arbitrary-precision decimal carried as its string form.
// The value is never converted to a float.
type BigDecimal struct {
	value string
}

// NewBigDecimal validates the decimal syntax of s.
func NewBigDecimal(s string) (BigDecimal, error) {
	if !decimalPattern.MatchString(s) {
		return BigDecimal{}, invalid(markerBigDecimal, "", s, "expected a decimal number string")
	}

	return BigDecimal{value: s}, nil
}

// MustBigDecimal is NewBigDecimal that panics on invalid input.
func MustBigDecimal(s string) BigDecimal {
	d, err := NewBigDecimal(s)
	if err != nil {
		panic(err)
	}

	return d
}

// String returns the decimal string.
func (d BigDecimal) String() string {
	return d.value
}

// MarshalJSON emits {"_sdkType":"BigDecimal","value":...}.
func (d BigDecimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		MarkerField: markerBigDecimal,
		"value":     d.value,
	})
}

// UnmarshalJSON accepts a decimal string or {"value": string}.
func (d *BigDecimal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var obj struct {
			Value string `json:"value"`
		}

		if err := json.Unmarshal(data, &obj); err != nil {
			return invalid(markerBigDecimal, "", string(data), "expected a decimal string")
		}

		s = obj.Value
	}

	parsed, err := NewBigDecimal(s)
	if err != nil {
		return err
	}

	*d = parsed

	return nil
}
