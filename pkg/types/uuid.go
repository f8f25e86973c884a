package types

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// UUID is the marketplace identifier type. It wraps the identifier string
// without interpreting it; equality is by string value.
type UUID struct {
	uuid string
}

// NewUUID wraps s.
func NewUUID(s string) UUID {
	return UUID{uuid: s}
}

// NewRandomUUID returns a fresh version 4 identifier.
func NewRandomUUID() UUID {
	return UUID{uuid: uuid.NewString()}
}

// ParseUUID builds a UUID from a dynamic value: a UUID, a string, or a map
// of the shape {"uuid": string}.
func ParseUUID(v any) (UUID, error) {
	switch val := v.(type) {
	case UUID:
		return val, nil
	case string:
		return NewUUID(val), nil
	case map[string]any:
		if s, ok := val["uuid"].(string); ok {
			return NewUUID(s), nil
		}

		return UUID{}, invalid(markerUUID, "uuid", v, "expected a string uuid field")
	default:
		return UUID{}, invalid(markerUUID, "", v, "expected a string or {uuid} object")
	}
}

// String returns the wrapped identifier.
func (u UUID) String() string {
	return u.uuid
}

// Parse interprets the identifier as an RFC 4122 UUID.
func (u UUID) Parse() (uuid.UUID, error) {
	parsed, err := uuid.Parse(u.uuid)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("parsing identifier %q: %w", u.uuid, err)
	}

	return parsed, nil
}

// MarshalJSON emits {"_sdkType":"UUID","uuid":...}.
func (u UUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		MarkerField: markerUUID,
		"uuid":      u.uuid,
	})
}

// UnmarshalJSON accepts a bare string or an object with a uuid field.
func (u *UUID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		u.uuid = s

		return nil
	}

	var obj struct {
		UUID *string `json:"uuid"`
	}

	err := json.Unmarshal(data, &obj)
	if err != nil || obj.UUID == nil {
		return invalid(markerUUID, "", string(data), "expected a string or {uuid} object")
	}

	u.uuid = *obj.UUID

	return nil
}
