package tokenstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrNilToken     = errors.New("token is nil")
	ErrEmptyToken   = errors.New("token has no access token")
	ErrCorruptToken = errors.New("persisted token is corrupt")
)

// Scope names issued by the marketplace auth endpoint.
const (
	ScopePublicRead  = "public-read"
	ScopeUser        = "user"
	ScopeUserLimited = "user:limited"
	ScopeIntegration = "integ"
	ScopeTrustedUser = "trusted:user"
)

// Token is the auth endpoint's token payload.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Valid reports whether the token can be attached to a request.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// Scopes splits the space separated scope field.
func (t *Token) Scopes() []string {
	if t == nil {
		return nil
	}

	return strings.Fields(t.Scope)
}

// HasScope reports whether scope was granted.
func (t *Token) HasScope(scope string) bool {
	for _, s := range t.Scopes() {
		if s == scope {
			return true
		}
	}

	return false
}

// HasRefreshToken reports whether the token can be refreshed.
func (t *Token) HasRefreshToken() bool {
	return t != nil && t.RefreshToken != ""
}

// AuthorizationHeader renders the Authorization header value.
func (t *Token) AuthorizationHeader() string {
	tokenType := t.TokenType
	if tokenType == "" || strings.EqualFold(tokenType, "bearer") {
		tokenType = "Bearer"
	}

	return tokenType + " " + t.AccessToken
}

// Clone returns a copy so callers cannot mutate stored state.
func (t *Token) Clone() *Token {
	if t == nil {
		return nil
	}

	clone := *t

	return &clone
}

// Encode serializes the token to JSON.
func Encode(token *Token) ([]byte, error) {
	if token == nil {
		return nil, ErrNilToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return nil, fmt.Errorf("failed to encode token: %w", err)
	}

	return data, nil
}

// Decode parses a persisted token. Anything that is not a JSON object with
// an access token yields ErrCorruptToken.
func Decode(data []byte) (*Token, error) {
	var token Token

	err := json.Unmarshal(data, &token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptToken, err)
	}

	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: %w", ErrCorruptToken, ErrEmptyToken)
	}

	return &token, nil
}
