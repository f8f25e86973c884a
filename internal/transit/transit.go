// Package transit implements the Transit JSON wire format used by the
// marketplace API, extended with tags for the SDK rich types:
//
//	u    UUID          "~u<uuid>"
//	geo  LatLng        ["~#geo",[lat,lng]]
//	mn   Money         ["~#mn",[amount,currency]]
//	f    BigDecimal    "~f<digits>"
//
// Timestamps use the built-in "m" (compact) and "t" (verbose) tags; compact
// mode falls back to "t" for times with sub-millisecond precision. Map keys
// are written as keywords and keywords and symbols read back as strings.
// Compact mode caches repeated keys and tags; verbose mode writes plain JSON
// objects and never caches.
package transit

import (
	"errors"
	"fmt"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// ContentType is the MIME type of Transit JSON.
const ContentType = "application/transit+json"

// Static errors for err113 compliance.
var (
	ErrUnsupportedValue = errors.New("transit: unsupported value")
	ErrMalformed        = errors.New("transit: malformed input")
	ErrNilTarget        = errors.New("transit: unmarshal target must be a non-nil *any")
)

// TaggedValue is a value whose tag the reader does not know.
type TaggedValue struct {
	Tag string
	Rep any
}

// Codec encodes and decodes Transit JSON. It is safe for concurrent use;
// caches live only for the duration of one call.
type Codec struct {
	verbose  bool
	handlers []types.TypeHandler
}

// NewCodec builds a codec. Handlers with a Reader run after the built-in
// reader of their SDKType; handlers with a Writer are offered every
// application value before it is encoded.
func NewCodec(handlers []types.TypeHandler, verbose bool) *Codec {
	return &Codec{
		verbose:  verbose,
		handlers: append([]types.TypeHandler(nil), handlers...),
	}
}

// ContentType returns the Transit JSON MIME type.
func (c *Codec) ContentType() string {
	return ContentType
}

// Verbose reports whether the codec writes verbose Transit.
func (c *Codec) Verbose() bool {
	return c.verbose
}

// Marshal encodes v.
func (c *Codec) Marshal(v any) ([]byte, error) {
	w := &writer{codec: c}
	if !c.verbose {
		w.cache = newWriteCache()
	}

	return w.marshal(v)
}

// Unmarshal decodes data into v, which must be a *any.
func (c *Codec) Unmarshal(data []byte, v any) error {
	target, ok := v.(*any)
	if !ok || target == nil {
		return ErrNilTarget
	}

	decoded, err := c.Decode(data)
	if err != nil {
		return err
	}

	*target = decoded

	return nil
}

// Decode parses data into a generic tree holding rich values.
func (c *Codec) Decode(data []byte) (any, error) {
	r := &reader{codec: c, cache: newReadCache()}

	return r.decode(data)
}

func unsupported(key string, v any) error {
	if key == "" {
		return fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}

	return fmt.Errorf("%w: %T at %q", ErrUnsupportedValue, v, key)
}
