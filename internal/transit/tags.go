package transit

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// Extension tags for the marketplace rich types.
const (
	TagUUID       = "u"
	TagLatLng     = "geo"
	TagMoney      = "mn"
	TagBigDecimal = "f"
)

// tagEntry binds one tag to one rich kind. Scalar entries travel as
// "~<tag><rep>" strings; the others as tagged arrays.
type tagEntry struct {
	tag    string
	kind   types.Kind
	scalar bool
	rep    func(v any) any
	build  func(rep any) (any, error)
}

var tagTable = []tagEntry{
	{
		tag:    TagUUID,
		kind:   types.KindUUID,
		scalar: true,
		rep:    func(v any) any { return v.(types.UUID).String() },
		build:  buildUUID,
	},
	{
		tag:  TagLatLng,
		kind: types.KindLatLng,
		rep: func(v any) any {
			p := v.(types.LatLng)

			return []any{p.Lat(), p.Lng()}
		},
		build: func(rep any) (any, error) {
			pair, err := tuple(TagLatLng, rep)
			if err != nil {
				return nil, err
			}

			return types.NewLatLng(pair[0], pair[1])
		},
	},
	{
		tag:  TagMoney,
		kind: types.KindMoney,
		rep: func(v any) any {
			m := v.(types.Money)

			return []any{m.Amount(), m.Currency()}
		},
		build: func(rep any) (any, error) {
			pair, err := tuple(TagMoney, rep)
			if err != nil {
				return nil, err
			}

			currency, _ := pair[1].(string)

			return types.NewMoney(pair[0], currency)
		},
	},
	{
		tag:    TagBigDecimal,
		kind:   types.KindBigDecimal,
		scalar: true,
		rep:    func(v any) any { return v.(types.BigDecimal).String() },
		build: func(rep any) (any, error) {
			s, ok := rep.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s tag expects a string, got %T", ErrMalformed, TagBigDecimal, rep)
			}

			return types.NewBigDecimal(s)
		},
	},
}

var (
	entriesByTag  = make(map[string]*tagEntry, len(tagTable))
	entriesByKind = make(map[types.Kind]*tagEntry, len(tagTable))
)

func init() {
	for i := range tagTable {
		entry := &tagTable[i]
		entriesByTag[entry.tag] = entry
		entriesByKind[entry.kind] = entry
	}
}

func tuple(tag string, rep any) ([]any, error) {
	pair, ok := rep.([]any)
	if !ok || len(pair) != 2 {
		return nil, fmt.Errorf("%w: %s tag expects a 2-element array, got %v", ErrMalformed, tag, rep)
	}

	return pair, nil
}

// buildUUID accepts the string form and the two signed 64-bit halves some
// writers emit.
func buildUUID(rep any) (any, error) {
	switch val := rep.(type) {
	case string:
		return types.NewUUID(val), nil
	case []any:
		if len(val) != 2 {
			break
		}

		hi, okHi := types.ToInt64(val[0])
		lo, okLo := types.ToInt64(val[1])

		if !okHi || !okLo {
			break
		}

		var id uuid.UUID

		for i := range 8 {
			id[i] = byte(uint64(hi) >> (56 - 8*i))
			id[8+i] = byte(uint64(lo) >> (56 - 8*i))
		}

		return types.NewUUID(id.String()), nil
	}

	return nil, fmt.Errorf("%w: %s tag expects a string, got %v", ErrMalformed, TagUUID, rep)
}
