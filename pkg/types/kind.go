package types

import "time"

// Kind discriminates the rich value types. The zero value is not a kind.
type Kind int

// Rich value kinds.
const (
	KindUUID Kind = iota + 1
	KindMoney
	KindLatLng
	KindLatLngBounds
	KindBigDecimal
	KindTimestamp
)

// Marker names written into the private _sdkType field.
const (
	MarkerField = "_sdkType"

	markerUUID         = "UUID"
	markerMoney        = "Money"
	markerLatLng       = "LatLng"
	markerLatLngBounds = "LatLngBounds"
	markerBigDecimal   = "BigDecimal"
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindUUID:
		return markerUUID
	case KindMoney:
		return markerMoney
	case KindLatLng:
		return markerLatLng
	case KindLatLngBounds:
		return markerLatLngBounds
	case KindBigDecimal:
		return markerBigDecimal
	case KindTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// Valid reports whether k names one of the rich kinds.
func (k Kind) Valid() bool {
	return k >= KindUUID && k <= KindTimestamp
}

// KindOf reports which rich type v is. Only value forms are recognised;
// pointers to rich types are treated as application values.
func KindOf(v any) (Kind, bool) {
	switch v.(type) {
	case UUID:
		return KindUUID, true
	case Money:
		return KindMoney, true
	case LatLng:
		return KindLatLng, true
	case LatLngBounds:
		return KindLatLngBounds, true
	case BigDecimal:
		return KindBigDecimal, true
	case time.Time:
		return KindTimestamp, true
	default:
		return 0, false
	}
}

// IsRich reports whether v is any rich value.
func IsRich(v any) bool {
	_, ok := KindOf(v)

	return ok
}
