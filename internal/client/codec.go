package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"mime"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/internal/marshal"
	"github.com/fivetwenty-io/marketplace-sdk/internal/transit"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// codec encodes request bodies and decodes response bodies of one wire
// format. Decoded trees hold rich SDK types.
type codec interface {
	ContentType() string
	Encode(v any) ([]byte, error)
	Decode(data []byte) (any, error)
}

type jsonCodec struct {
	marshaller *marshal.Marshaller
}

func (c *jsonCodec) ContentType() string {
	return constants.ContentTypeJSON
}

func (c *jsonCodec) Encode(v any) ([]byte, error) {
	data, err := c.marshaller.TypeToData(v)
	if err != nil {
		return nil, fmt.Errorf("marshalling body: %w", err)
	}

	out, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON body: %w", err)
	}

	return out, nil
}

func (c *jsonCodec) Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any

	err := dec.Decode(&generic)
	if err != nil {
		return nil, fmt.Errorf("decoding JSON body: %w", err)
	}

	out, err := c.marshaller.DataToType(generic)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling body: %w", err)
	}

	return out, nil
}

type transitCodec struct {
	codec    *transit.Codec
	handlers []types.TypeHandler
}

func (c *transitCodec) ContentType() string {
	return c.codec.ContentType()
}

func (c *transitCodec) Encode(v any) ([]byte, error) {
	prepared, err := c.prepare("", v)
	if err != nil {
		return nil, err
	}

	out, err := c.codec.Marshal(prepared)
	if err != nil {
		return nil, fmt.Errorf("encoding transit body: %w", err)
	}

	return out, nil
}

func (c *transitCodec) Decode(data []byte) (any, error) {
	out, err := c.codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding transit body: %w", err)
	}

	return out, nil
}

// prepare rewrites values the transit writer has no handler for into
// generic trees. Values a type handler will write are left for the writer.
func (c *transitCodec) prepare(key string, v any) (any, error) {
	for _, h := range c.handlers {
		if h.AcceptsWrite(key, v) {
			return v, nil
		}
	}

	switch val := v.(type) {
	case nil, bool, string, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		*big.Int, []byte, *url.URL, time.Time, []string,
		transit.TaggedValue:
		return val, nil
	case map[string]any:
		out := make(map[string]any, len(val))

		for k, child := range val {
			prepared, err := c.prepare(k, child)
			if err != nil {
				return nil, err
			}

			out[k] = prepared
		}

		return out, nil
	case []any:
		out := make([]any, len(val))

		for i, child := range val {
			prepared, err := c.prepare(key, child)
			if err != nil {
				return nil, err
			}

			out[i] = prepared
		}

		return out, nil
	}

	if types.IsRich(v) {
		return v, nil
	}

	normalized, err := marshal.Normalize(v)
	if err != nil {
		return nil, fmt.Errorf("preparing %q: %w", key, err)
	}

	// A struct may hold application values only a handler can write.
	if obj, ok := normalized.(map[string]any); ok {
		return c.prepare(key, obj)
	}

	if list, ok := normalized.([]any); ok {
		return c.prepare(key, list)
	}

	return normalized, nil
}

// mediaType extracts the MIME type from a Content-Type header.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}

	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	}

	return mt
}

// decodeBody picks a codec by the response Content-Type. Bodies that are
// neither JSON nor transit are returned as strings.
func (c *Client) decodeBody(contentType string, body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	mt := mediaType(contentType)

	switch {
	case mt == constants.ContentTypeTransit:
		return c.transit.Decode(body)
	case mt == constants.ContentTypeJSON || strings.HasSuffix(mt, "+json"):
		return c.json.Decode(body)
	default:
		return string(body), nil
	}
}

// int64Field reads an integer from a decoded tree.
func int64Field(v any) int64 {
	if i, ok := types.ToInt64(v); ok {
		return i
	}

	if s, ok := v.(string); ok {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return i
		}
	}

	return 0
}
