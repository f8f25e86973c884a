// Package auth defines the marketplace token grants. Each grant is a form
// body posted to one of the /<version>/auth endpoints.
package auth

import (
	"errors"
	"net/url"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
)

// Static errors for err113 compliance.
var (
	ErrMissingParameter = errors.New("missing grant parameter")
)

// Grant type names. They double as metric labels.
const (
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"
	GrantRefreshToken      = "refresh_token"
	GrantTokenExchange     = "token_exchange"
	GrantAuthorizationCode = "authorization_code"
	GrantIdp               = "idp"
	GrantRevoke            = "revoke"
	GrantIntegration       = "integration"
)

// Grant is one request to an auth endpoint.
type Grant struct {
	// Name identifies the grant in logs and metrics.
	Name string

	// Endpoint is the path below /<version>/auth/.
	Endpoint string

	// Form is the url-encoded body.
	Form url.Values

	// Authenticated grants carry the stored bearer token if one exists.
	// They never trigger anonymous token acquisition.
	Authenticated bool
}

// Encode returns the form body.
func (g Grant) Encode() []byte {
	return []byte(g.Form.Encode())
}

// Anonymous is the public-read client credentials grant used before login.
func Anonymous(clientID string) Grant {
	return Grant{
		Name:     GrantClientCredentials,
		Endpoint: constants.PathToken,
		Form: url.Values{
			"client_id":  {clientID},
			"grant_type": {GrantClientCredentials},
			"scope":      {tokenstore.ScopePublicRead},
		},
	}
}

// Integration is the client credentials grant for the integration API.
func Integration(clientID, clientSecret string) Grant {
	return Grant{
		Name:     GrantIntegration,
		Endpoint: constants.PathToken,
		Form: url.Values{
			"client_id":     {clientID},
			"client_secret": {clientSecret},
			"grant_type":    {GrantClientCredentials},
			"scope":         {tokenstore.ScopeIntegration},
		},
	}
}

// Password logs a user in.
func Password(clientID, username, password string) Grant {
	return Grant{
		Name:     GrantPassword,
		Endpoint: constants.PathToken,
		Form: url.Values{
			"client_id":  {clientID},
			"grant_type": {GrantPassword},
			"username":   {username},
			"password":   {password},
			"scope":      {tokenstore.ScopeUser},
		},
	}
}

// Idp logs a user in with an identity provider token.
func Idp(clientID, clientSecret, idpID, idpClientID, idpToken string) Grant {
	form := url.Values{
		"client_id":     {clientID},
		"idp_id":        {idpID},
		"idp_client_id": {idpClientID},
		"idp_token":     {idpToken},
	}

	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}

	return Grant{
		Name:     GrantIdp,
		Endpoint: constants.PathAuthWithIdp,
		Form:     form,
	}
}

// Refresh exchanges a refresh token. Trusted tokens are refreshed with the
// client secret, which is omitted when empty.
func Refresh(clientID, clientSecret, refreshToken string) Grant {
	form := url.Values{
		"client_id":     {clientID},
		"grant_type":    {GrantRefreshToken},
		"refresh_token": {refreshToken},
	}

	if clientSecret != "" {
		form.Set("client_secret", clientSecret)
	}

	return Grant{
		Name:     GrantRefreshToken,
		Endpoint: constants.PathToken,
		Form:     form,
	}
}

// TokenExchange trades a user access token for a trusted one.
func TokenExchange(clientID, clientSecret, subjectToken string) Grant {
	return Grant{
		Name:     GrantTokenExchange,
		Endpoint: constants.PathToken,
		Form: url.Values{
			"client_id":     {clientID},
			"client_secret": {clientSecret},
			"grant_type":    {GrantTokenExchange},
			"scope":         {tokenstore.ScopeTrustedUser},
			"subject_token": {subjectToken},
		},
	}
}

// AuthorizationCode completes a login-as flow with a PKCE verifier.
func AuthorizationCode(clientID, code, redirectURI, codeVerifier string) Grant {
	return Grant{
		Name:     GrantAuthorizationCode,
		Endpoint: constants.PathToken,
		Form: url.Values{
			"client_id":     {clientID},
			"grant_type":    {GrantAuthorizationCode},
			"code":          {code},
			"redirect_uri":  {redirectURI},
			"code_verifier": {codeVerifier},
		},
	}
}

// Revoke invalidates a refresh token.
func Revoke(clientID, refreshToken string) Grant {
	return Grant{
		Name:     GrantRevoke,
		Endpoint: constants.PathRevoke,
		Form: url.Values{
			"client_id": {clientID},
			"token":     {refreshToken},
		},
		Authenticated: true,
	}
}

// Require returns ErrMissingParameter naming the first empty form field.
func (g Grant) Require(fields ...string) error {
	for _, field := range fields {
		if g.Form.Get(field) == "" {
			return &MissingParameterError{Grant: g.Name, Field: field}
		}
	}

	return nil
}

// MissingParameterError names the empty field of a grant.
type MissingParameterError struct {
	Grant string
	Field string
}

func (e *MissingParameterError) Error() string {
	return e.Grant + " grant: " + e.Field + " is required"
}

func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameter
}
