package transit

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// Integers outside this range are written as "~i" strings so that readers
// backed by float64 numbers keep them exact.
const maxSafeInteger = 1<<53 - 1

type writer struct {
	codec *Codec
	cache *writeCache
}

func (w *writer) marshal(v any) ([]byte, error) {
	node, err := w.value("", v)
	if err != nil {
		return nil, err
	}

	// A scalar top level is wrapped in the quote tag.
	switch node.(type) {
	case []any, map[string]any:
	default:
		node = w.tagged("'", node)
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	err = enc.Encode(node)
	if err != nil {
		return nil, fmt.Errorf("transit: encoding: %w", err)
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// str passes an already encoded string through the write cache.
func (w *writer) str(s string, asKey bool) string {
	if w.cache == nil {
		return s
	}

	return w.cache.encode(s, asKey)
}

// tagged builds a tagged value node. The tag is encoded before rep so the
// cache sees strings in wire order.
func (w *writer) tagged(tag string, rep any) any {
	encodedTag := w.str("~#"+tag, false)

	if w.codec.verbose {
		return map[string]any{encodedTag: rep}
	}

	return []any{encodedTag, rep}
}

func (w *writer) taggedValue(key, tag string, rep any) (any, error) {
	encodedTag := w.str("~#"+tag, false)

	node, err := w.value(key, rep)
	if err != nil {
		return nil, err
	}

	if w.codec.verbose {
		return map[string]any{encodedTag: node}, nil
	}

	return []any{encodedTag, node}, nil
}

func (w *writer) value(key string, v any) (any, error) {
	v, err := w.transform(key, v)
	if err != nil {
		return nil, err
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return val, nil
	case string:
		return w.str(escape(val), false), nil
	case int:
		return w.integer(int64(val)), nil
	case int8:
		return w.integer(int64(val)), nil
	case int16:
		return w.integer(int64(val)), nil
	case int32:
		return w.integer(int64(val)), nil
	case int64:
		return w.integer(val), nil
	case uint:
		return w.unsigned(uint64(val)), nil
	case uint8:
		return w.integer(int64(val)), nil
	case uint16:
		return w.integer(int64(val)), nil
	case uint32:
		return w.integer(int64(val)), nil
	case uint64:
		return w.unsigned(val), nil
	case float32:
		return w.float(float64(val)), nil
	case float64:
		return w.float(val), nil
	case json.Number:
		return w.number(val), nil
	case *big.Int:
		return w.str("~n"+val.String(), false), nil
	case []byte:
		return w.str("~b"+base64.StdEncoding.EncodeToString(val), false), nil
	case *url.URL:
		return w.str("~r"+val.String(), false), nil
	case time.Time:
		return w.timestamp(val), nil
	case types.UUID, types.Money, types.LatLng, types.BigDecimal:
		return w.rich(key, val)
	case types.LatLngBounds:
		return w.mapNode(map[string]any{"ne": val.NE(), "sw": val.SW()})
	case TaggedValue:
		if rep, ok := val.Rep.(string); ok && len(val.Tag) == 1 {
			return w.str("~"+val.Tag+rep, false), nil
		}

		return w.taggedValue(key, val.Tag, val.Rep)
	case map[string]any:
		return w.mapNode(val)
	case []any:
		return w.list(key, val)
	case []string:
		items := make([]any, len(val))
		for i, s := range val {
			items[i] = s
		}

		return w.list(key, items)
	default:
		return nil, unsupported(key, v)
	}
}

// transform runs on every value the generic map handler would see: plain
// maps and unknown application values. A marker-carrying map becomes its
// rich value, then caller writers may replace the value.
func (w *writer) transform(key string, v any) (any, error) {
	if !needsTransform(v) {
		return v, nil
	}

	if obj, ok := v.(map[string]any); ok {
		revived, found, err := types.ReviveMarker(obj)
		if err != nil {
			return nil, fmt.Errorf("transit: reviving %v: %w", obj[types.MarkerField], err)
		}

		if found {
			v = revived
		}
	}

	for _, h := range w.codec.handlers {
		if !h.AcceptsWrite(key, v) {
			continue
		}

		next, err := h.Writer(v)
		if err != nil {
			return nil, fmt.Errorf("transit: type handler writer for %q: %w", key, err)
		}

		v = next
	}

	return v, nil
}

func needsTransform(v any) bool {
	switch v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		*big.Int, []byte, *url.URL,
		[]any, []string, TaggedValue:
		return false
	default:
		return !types.IsRich(v)
	}
}

func (w *writer) rich(key string, v any) (any, error) {
	kind, _ := types.KindOf(v)
	entry := entriesByKind[kind]

	rep := entry.rep(v)
	if entry.scalar {
		return w.str(fmt.Sprintf("~%s%v", entry.tag, rep), false), nil
	}

	return w.taggedValue(key, entry.tag, rep)
}

func (w *writer) mapNode(m map[string]any) (any, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	if w.codec.verbose {
		out := make(map[string]any, len(m))

		for _, k := range keys {
			node, err := w.value(k, m[k])
			if err != nil {
				return nil, err
			}

			out["~:"+k] = node
		}

		return out, nil
	}

	out := make([]any, 0, 1+2*len(m))
	out = append(out, mapMarker)

	for _, k := range keys {
		encodedKey := w.str("~:"+k, true)

		node, err := w.value(k, m[k])
		if err != nil {
			return nil, err
		}

		out = append(out, encodedKey, node)
	}

	return out, nil
}

func (w *writer) list(key string, items []any) (any, error) {
	out := make([]any, len(items))

	for i, item := range items {
		node, err := w.value(key, item)
		if err != nil {
			return nil, err
		}

		out[i] = node
	}

	return out, nil
}

func (w *writer) integer(i int64) any {
	if i > maxSafeInteger || i < -maxSafeInteger {
		return w.str("~i"+strconv.FormatInt(i, 10), false)
	}

	return i
}

func (w *writer) unsigned(u uint64) any {
	if u > math.MaxInt64 {
		return w.str("~n"+strconv.FormatUint(u, 10), false)
	}

	return w.integer(int64(u))
}

func (w *writer) float(f float64) any {
	switch {
	case math.IsNaN(f):
		return w.str("~zNaN", false)
	case math.IsInf(f, 1):
		return w.str("~zINF", false)
	case math.IsInf(f, -1):
		return w.str("~z-INF", false)
	default:
		return f
	}
}

func (w *writer) number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return w.integer(i)
	}

	if f, err := n.Float64(); err == nil {
		return w.float(f)
	}

	return w.str("~n"+n.String(), false)
}

// timestamp writes "~m" millis in compact mode unless that would drop
// sub-millisecond precision.
func (w *writer) timestamp(t time.Time) any {
	if w.codec.verbose || t.Nanosecond()%int(time.Millisecond) != 0 {
		return w.str("~t"+t.UTC().Format(time.RFC3339Nano), false)
	}

	return w.str("~m"+strconv.FormatInt(t.UnixMilli(), 10), false)
}

func escape(s string) string {
	if s == "" {
		return s
	}

	switch s[0] {
	case '~', '^', '`':
		return "~" + s
	default:
		return s
	}
}
