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
	"strings"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// tagMarker is a decoded "~#tag" string. It only has meaning at the head of
// a two element array.
type tagMarker string

type reader struct {
	codec *Codec
	cache *readCache
}

func (r *reader) decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any

	err := dec.Decode(&raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	v, err := r.parse(raw, false)
	if err != nil {
		return nil, err
	}

	return r.applyReaders(untag(v))
}

// applyReaders runs caller readers over a fully decoded tree. Rich values
// are all rebuilt first so composite ones such as LatLngBounds still see
// their built-in parts.
func (r *reader) applyReaders(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			next, err := r.applyReaders(child)
			if err != nil {
				return nil, err
			}

			val[k] = next
		}

		return val, nil
	case []any:
		for i, child := range val {
			next, err := r.applyReaders(child)
			if err != nil {
				return nil, err
			}

			val[i] = next
		}

		return val, nil
	default:
		return r.readRich(v)
	}
}

func (r *reader) parse(node any, asKey bool) (any, error) {
	switch val := node.(type) {
	case string:
		return r.parseString(val, asKey)
	case []any:
		return r.parseArray(val)
	case map[string]any:
		return r.parseObject(val)
	case json.Number:
		return number(val), nil
	default:
		return val, nil
	}
}

func (r *reader) parseString(s string, asKey bool) (any, error) {
	if isCacheCode(s) {
		v, ok := r.cache.lookup(s)
		if !ok {
			return nil, fmt.Errorf("%w: unknown cache reference %q", ErrMalformed, s)
		}

		return v, nil
	}

	v, err := r.decodeScalar(s)
	if err != nil {
		return nil, err
	}

	if isCacheable(s, asKey) {
		r.cache.add(v)
	}

	return v, nil
}

func (r *reader) parseArray(arr []any) (any, error) {
	if len(arr) == 0 {
		return []any{}, nil
	}

	if head, ok := arr[0].(string); ok && head == mapMarker {
		return r.parseCompactMap(arr[1:])
	}

	first, err := r.parse(arr[0], false)
	if err != nil {
		return nil, err
	}

	if tag, ok := first.(tagMarker); ok && len(arr) == 2 {
		rep, err := r.parse(arr[1], false)
		if err != nil {
			return nil, err
		}

		return r.tagged(string(tag), untag(rep))
	}

	out := make([]any, len(arr))
	out[0] = untag(first)

	for i := 1; i < len(arr); i++ {
		v, err := r.parse(arr[i], false)
		if err != nil {
			return nil, err
		}

		out[i] = untag(v)
	}

	return out, nil
}

func (r *reader) parseCompactMap(items []any) (any, error) {
	if len(items)%2 != 0 {
		return nil, fmt.Errorf("%w: map has an odd number of elements", ErrMalformed)
	}

	out := make(map[string]any, len(items)/2)

	for i := 0; i < len(items); i += 2 {
		k, err := r.parse(items[i], true)
		if err != nil {
			return nil, err
		}

		v, err := r.parse(items[i+1], false)
		if err != nil {
			return nil, err
		}

		out[keyString(k)] = untag(v)
	}

	return r.bounds(out)
}

// parseObject reads a verbose map or a verbose tagged value.
func (r *reader) parseObject(obj map[string]any) (any, error) {
	if len(obj) == 1 {
		for k, rep := range obj {
			if !strings.HasPrefix(k, "~#") {
				break
			}

			v, err := r.parse(rep, false)
			if err != nil {
				return nil, err
			}

			return r.tagged(k[2:], untag(v))
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	out := make(map[string]any, len(obj))

	for _, rawKey := range keys {
		k, err := r.parse(rawKey, true)
		if err != nil {
			return nil, err
		}

		v, err := r.parse(obj[rawKey], false)
		if err != nil {
			return nil, err
		}

		out[keyString(k)] = untag(v)
	}

	return r.bounds(out)
}

func (r *reader) decodeScalar(s string) (any, error) {
	if len(s) < 2 || s[0] != '~' {
		return s, nil
	}

	body := s[2:]

	switch s[1] {
	case '~', '^', '`':
		return s[1:], nil
	case ':', '$', 'c':
		return body, nil
	case '#':
		return tagMarker(body), nil
	case '_':
		return nil, nil
	case '?':
		return body == "t", nil
	case 'i':
		if i, err := strconv.ParseInt(body, 10, 64); err == nil {
			return i, nil
		}

		return bigInt(body)
	case 'n':
		return bigInt(body)
	case 'd':
		f, err := strconv.ParseFloat(body, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad float %q", ErrMalformed, body)
		}

		return f, nil
	case 'z':
		return special(body)
	case 'b':
		data, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: bad base64: %w", ErrMalformed, err)
		}

		return data, nil
	case 'r':
		u, err := url.Parse(body)
		if err != nil {
			return nil, fmt.Errorf("%w: bad URI: %w", ErrMalformed, err)
		}

		return u, nil
	default:
		// Scalar tags: built-in m and t plus the extension table.
		return r.tagged(string(s[1]), body)
	}
}

// tagged decodes a tag and its already parsed representation.
func (r *reader) tagged(tag string, rep any) (any, error) {
	switch tag {
	case "'":
		return rep, nil
	case "set", "list":
		items, ok := rep.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects an array", ErrMalformed, tag)
		}

		return items, nil
	case "cmap":
		items, ok := rep.([]any)
		if !ok || len(items)%2 != 0 {
			return nil, fmt.Errorf("%w: cmap expects an even array", ErrMalformed)
		}

		out := make(map[string]any, len(items)/2)
		for i := 0; i < len(items); i += 2 {
			out[keyString(items[i])] = items[i+1]
		}

		return out, nil
	case "m":
		ts, err := millis(rep)
		if err != nil {
			return nil, err
		}

		return ts, nil
	case "t":
		s, _ := rep.(string)

		ts, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return nil, fmt.Errorf("%w: bad timestamp %q", ErrMalformed, s)
		}

		return ts.UTC(), nil
	}

	entry, ok := entriesByTag[tag]
	if !ok {
		return TaggedValue{Tag: tag, Rep: rep}, nil
	}

	v, err := entry.build(rep)
	if err != nil {
		return nil, fmt.Errorf("transit: reading %s tag: %w", tag, err)
	}

	return v, nil
}

// readRich composes caller readers after the built-in one for the same
// kind.
func (r *reader) readRich(v any) (any, error) {
	kind, ok := types.KindOf(v)
	if !ok {
		return v, nil
	}

	for _, h := range r.codec.handlers {
		if h.Reader == nil || h.SDKType != kind {
			continue
		}

		next, err := h.Reader(v)
		if err != nil {
			return nil, fmt.Errorf("transit: type handler reader for %s: %w", kind, err)
		}

		v = next
	}

	return v, nil
}

// bounds turns a {ne, sw} map of two points back into LatLngBounds, which
// has no tag of its own.
func (r *reader) bounds(m map[string]any) (any, error) {
	if len(m) != 2 {
		return m, nil
	}

	ne, okNE := m["ne"].(types.LatLng)
	sw, okSW := m["sw"].(types.LatLng)

	if !okNE || !okSW {
		return m, nil
	}

	b, err := types.NewLatLngBounds(ne, sw)
	if err != nil {
		return nil, fmt.Errorf("transit: reading bounds: %w", err)
	}

	return b, nil
}

func untag(v any) any {
	if tag, ok := v.(tagMarker); ok {
		return "~#" + string(tag)
	}

	return v
}

func keyString(k any) string {
	switch key := untag(k).(type) {
	case string:
		return key
	case nil:
		return "null"
	case fmt.Stringer:
		return key.String()
	default:
		return fmt.Sprint(key)
	}
}

func number(n json.Number) any {
	if i, err := n.Int64(); err == nil {
		return i
	}

	if f, err := n.Float64(); err == nil {
		return f
	}

	return n
}

func bigInt(s string) (any, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad integer %q", ErrMalformed, s)
	}

	return n, nil
}

func special(s string) (any, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	default:
		return nil, fmt.Errorf("%w: bad special number %q", ErrMalformed, s)
	}
}

func millis(rep any) (time.Time, error) {
	var ms int64

	switch val := rep.(type) {
	case string:
		parsed, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad millis %q", ErrMalformed, val)
		}

		ms = parsed
	default:
		parsed, ok := types.ToInt64(val)
		if !ok {
			return time.Time{}, fmt.Errorf("%w: bad millis %v", ErrMalformed, rep)
		}

		ms = parsed
	}

	return time.UnixMilli(ms).UTC(), nil
}
