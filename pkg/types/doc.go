// Package types defines the rich value types exchanged with the marketplace
// API: UUID identifiers, Money, LatLng points, LatLngBounds rectangles and
// BigDecimal numbers. Timestamps are plain time.Time values.
//
// Every constructor validates its input and returns a *ValidationError on
// bad data. Values are immutable once built.
//
// Rich values marshal to JSON with a private "_sdkType" marker so that a
// plain JSON round trip can be reversed with Revive.
//
// TypeHandler lets an application swap a rich type for its own type, for
// example to read Money into a decimal library type:
//
//	handler := types.TypeHandler{
//	  SDKType: types.KindMoney,
//	  AppType: types.Instance[MyMoney](),
//	  Reader: func(v any) (any, error) {
//	    m := v.(types.Money)
//	    return MyMoney{Cents: m.Amount(), Code: m.Currency()}, nil
//	  },
//	  Writer: func(v any) (any, error) {
//	    m := v.(MyMoney)
//	    return types.NewMoney(m.Cents, m.Code)
//	  },
//	}
package types
