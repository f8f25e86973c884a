package sdk

import (
	"context"
	"net/http"
	"net/url"
)

// EndpointRequest describes one API call.
//
// Path is relative to /<version>/api unless it already starts with
// /<version>/. Params carries both query and body fields: for GET every
// param goes to the query string; otherwise control fields (include, page,
// perPage, expand, fields, limit) are hoisted into the query and the rest is
// encoded as the body. Query is merged into the query string as is.
type EndpointRequest struct {
	Method  string
	Path    string
	Params  map[string]any
	Query   url.Values
	Headers map[string]string

	// Trusted marks the path as requiring a trusted token.
	Trusted bool
}

// Response is a decoded API response. Data has rich SDK types in place of
// their wire representation.
type Response struct {
	Status  int
	Headers http.Header
	Data    any
}

// IdpParams are the parameters of an identity provider login.
type IdpParams struct {
	IdpID       string
	IdpClientID string
	IdpToken    string
}

// LoginAsParams are the parameters of an authorization code login, used by
// operators to log in as a marketplace user.
type LoginAsParams struct {
	Code         string
	RedirectURI  string
	CodeVerifier string
}

// AuthInfo describes the stored token without calling the API.
type AuthInfo struct {
	IsAnonymous  bool     `json:"isAnonymous"  yaml:"isAnonymous"`
	Scopes       []string `json:"scopes"       yaml:"scopes"`
	GrantType    string   `json:"grantType"    yaml:"grantType"`
	IsLoggedInAs bool     `json:"isLoggedInAs" yaml:"isLoggedInAs"`
}

// AuthClient performs token grants against the auth endpoints.
type AuthClient interface {
	Login(ctx context.Context, username, password string) (*Response, error)
	LoginWithIdp(ctx context.Context, params IdpParams) (*Response, error)
	LoginAs(ctx context.Context, params LoginAsParams) (*Response, error)
	ExchangeToken(ctx context.Context) (*Response, error)
	Logout(ctx context.Context) (*Response, error)
	AuthInfo(ctx context.Context) (*AuthInfo, error)
}

// EndpointClient calls API endpoints through the authenticated pipeline.
type EndpointClient interface {
	Do(ctx context.Context, req *EndpointRequest) (*Response, error)
	Get(ctx context.Context, path string, params map[string]any) (*Response, error)
	Post(ctx context.Context, path string, params map[string]any) (*Response, error)
}

// Client is the marketplace API client.
type Client interface {
	AuthClient
	EndpointClient
}
