// Package marshal converts between generic wire trees and rich values.
//
// A wire tree is what encoding/json produces when decoding into any:
// map[string]any, []any, string, bool, nil and numbers. DataToType turns
// such a tree into one holding rich values from pkg/types, guided by key
// names and object shapes. TypeToData is the mirror used before encoding an
// outgoing body. Both return new trees and leave their input untouched.
package marshal

import (
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// Marshaller applies the built-in conversion rules plus caller handlers.
type Marshaller struct {
	handlers []types.TypeHandler
}

// New returns a Marshaller using handlers in registration order.
func New(handlers []types.TypeHandler) *Marshaller {
	return &Marshaller{handlers: append([]types.TypeHandler(nil), handlers...)}
}

// Handlers returns the registered handlers.
func (m *Marshaller) Handlers() []types.TypeHandler {
	return m.handlers
}

// DataToType converts a wire tree into a tree of rich values. An id field
// that is neither a string nor a {uuid} object fails the whole conversion.
func (m *Marshaller) DataToType(data any) (any, error) {
	converted, err := dataToType("", data)
	if err != nil {
		return nil, err
	}

	if !m.hasReaders() {
		return converted, nil
	}

	return m.applyReaders("", converted)
}

func dataToType(key string, value any) (any, error) {
	switch val := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))

		for k, child := range val {
			converted, err := dataToType(k, child)
			if err != nil {
				return nil, err
			}

			out[k] = converted
		}

		value = out
	case []any:
		out := make([]any, len(val))

		for i, child := range val {
			// Elements carry no key, so only shape rules can match them.
			converted, err := dataToType("", child)
			if err != nil {
				return nil, err
			}

			out[i] = converted
		}

		value = out
	default:
		value = plainNumber(value)
	}

	converted, matched, err := applyKeyRule(key, value)
	if err != nil {
		return nil, err
	}

	if matched {
		return converted, nil
	}

	if obj, ok := value.(map[string]any); ok {
		if shaped, ok := applyShapeRule(obj); ok {
			return shaped, nil
		}
	}

	return value, nil
}

func (m *Marshaller) hasReaders() bool {
	for _, h := range m.handlers {
		if h.Reader != nil {
			return true
		}
	}

	return false
}

func (m *Marshaller) hasWriters() bool {
	for _, h := range m.handlers {
		if h.Writer != nil {
			return true
		}
	}

	return false
}

// applyReaders offers each value to the handlers before descending. A value
// replaced by a handler is not traversed further.
func (m *Marshaller) applyReaders(key string, value any) (any, error) {
	current := value
	fired := false

	for _, h := range m.handlers {
		if !h.AcceptsRead(key, current) {
			continue
		}

		next, err := h.Reader(current)
		if err != nil {
			return nil, fmt.Errorf("type handler reader for %q: %w", key, err)
		}

		current = next
		fired = true
	}

	if fired {
		return current, nil
	}

	switch val := current.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))

		for k, child := range val {
			converted, err := m.applyReaders(k, child)
			if err != nil {
				return nil, err
			}

			out[k] = converted
		}

		return out, nil
	case []any:
		out := make([]any, len(val))

		for i, child := range val {
			converted, err := m.applyReaders(strconv.Itoa(i), child)
			if err != nil {
				return nil, err
			}

			out[i] = converted
		}

		return out, nil
	default:
		return current, nil
	}
}
