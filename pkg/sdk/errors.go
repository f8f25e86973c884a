package sdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired        = errors.New("config is required")
	ErrClientIDRequired      = errors.New("client ID is required")
	ErrTokenStoreRequired    = errors.New("token store is required")
	ErrClientSecretRequired  = errors.New("client secret is required")
	ErrInvalidWireFormat     = errors.New("invalid wire format")
	ErrInvalidBaseURL        = errors.New("invalid base URL")
	ErrPathRequired          = errors.New("path is required")
	ErrCredentialsRequired   = errors.New("username and password are required")
	ErrIdpParamsRequired     = errors.New("idpId, idpClientId and idpToken are required")
	ErrLoginAsParamsRequired = errors.New("code, redirectUri and codeVerifier are required")
	ErrNoTokenResponse       = errors.New("auth response did not contain a token")
	ErrNoToken               = errors.New("no stored token, log in first")
)

// ErrorDetail is a single entry of an API error response.
type ErrorDetail struct {
	ID      string         `json:"id,omitempty"      yaml:"id,omitempty"`
	Status  int            `json:"status,omitempty"  yaml:"status,omitempty"`
	Code    string         `json:"code,omitempty"    yaml:"code,omitempty"`
	Title   string         `json:"title,omitempty"   yaml:"title,omitempty"`
	Details string         `json:"details,omitempty" yaml:"details,omitempty"`
	Source  map[string]any `json:"source,omitempty"  yaml:"source,omitempty"`
}

// APIError is returned for every non-2xx response. Data holds the body
// decoded with the active wire format when decoding succeeded.
type APIError struct {
	Status     int
	StatusText string
	Errors     []ErrorDetail
	Headers    http.Header
	Body       []byte
	Data       any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("API error: %d %s", e.Status, e.StatusText)

	if len(e.Errors) == 0 {
		return msg
	}

	parts := make([]string, 0, len(e.Errors))
	for _, detail := range e.Errors {
		switch {
		case detail.Title != "" && detail.Code != "":
			parts = append(parts, fmt.Sprintf("%s (%s)", detail.Title, detail.Code))
		case detail.Title != "":
			parts = append(parts, detail.Title)
		case detail.Code != "":
			parts = append(parts, detail.Code)
		}
	}

	if len(parts) == 0 {
		return msg
	}

	return msg + ": " + strings.Join(parts, "; ")
}

// FirstError returns the first error detail or nil.
func (e *APIError) FirstError() *ErrorDetail {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}

	return nil
}

// NewAPIError builds an APIError from a raw response. JSON bodies with an
// "errors" array fill Errors; other bodies are kept only as Body.
func NewAPIError(status int, headers http.Header, body []byte) *APIError {
	apiErr := &APIError{
		Status:     status,
		StatusText: http.StatusText(status),
		Headers:    headers,
		Body:       body,
	}

	var payload struct {
		Errors []ErrorDetail `json:"errors"`
	}

	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		apiErr.Errors = payload.Errors
	}

	return apiErr
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}

// IsUnauthorized checks if the error is a 401 response.
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden checks if the error is a 403 response.
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound checks if the error is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
