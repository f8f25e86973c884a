package types

import (
	"errors"
	"fmt"
)

// ErrInvalidTypeHandler is returned by ValidateHandlers.
var ErrInvalidTypeHandler = errors.New("invalid type handler")

// TypeHandler converts between a rich SDK type and an application type.
//
// Reading (wire to application) fires on a value whose Kind equals SDKType,
// or, when CanHandle is set, wherever CanHandle accepts the value instead.
// Writing (application to wire) fires on a value accepted by AppType, or by
// CanHandle when it is set. The writer should return a rich SDK value (or a
// plain wire value). Either direction may be left nil.
type TypeHandler struct {
	SDKType   Kind
	AppType   func(v any) bool
	CanHandle func(key string, v any) bool
	Reader    func(v any) (any, error)
	Writer    func(v any) (any, error)
}

// Instance returns an AppType predicate matching values of type T.
func Instance[T any]() func(v any) bool {
	return func(v any) bool {
		_, ok := v.(T)

		return ok
	}
}

// AcceptsRead reports whether the handler's reader applies to v under key.
func (h TypeHandler) AcceptsRead(key string, v any) bool {
	if h.Reader == nil {
		return false
	}

	if h.CanHandle != nil {
		return h.CanHandle(key, v)
	}

	kind, ok := KindOf(v)

	return ok && kind == h.SDKType
}

// AcceptsWrite reports whether the handler's writer applies to v under key.
func (h TypeHandler) AcceptsWrite(key string, v any) bool {
	if h.Writer == nil {
		return false
	}

	if h.CanHandle != nil {
		return h.CanHandle(key, v)
	}

	return h.AppType != nil && h.AppType(v)
}

// ValidateHandlers checks that every handler can ever fire.
func ValidateHandlers(handlers []TypeHandler) error {
	for i, h := range handlers {
		if h.Reader == nil && h.Writer == nil {
			return fmt.Errorf("%w: handler %d has neither reader nor writer", ErrInvalidTypeHandler, i)
		}

		if h.CanHandle != nil {
			continue
		}

		if h.Reader != nil && !h.SDKType.Valid() {
			return fmt.Errorf("%w: handler %d reader needs SDKType or CanHandle", ErrInvalidTypeHandler, i)
		}

		if h.Writer != nil && h.AppType == nil {
			return fmt.Errorf("%w: handler %d writer needs AppType or CanHandle", ErrInvalidTypeHandler, i)
		}
	}

	return nil
}
