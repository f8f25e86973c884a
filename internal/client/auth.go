package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fivetwenty-io/marketplace-sdk/internal/auth"
	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
)

// grant posts a form-encoded grant. A token in the response is stored by
// the pipeline and returned.
func (c *Client) grant(ctx context.Context, g auth.Grant) (*sdk.Response, *tokenstore.Token, error) {
	mode := authNone
	if g.Authenticated {
		mode = authOptional
	}

	resp, err := c.send(ctx, &call{
		method: http.MethodPost,
		path:   c.authPath(g.Endpoint),
		body:   g.Encode(),
		mode:   mode,
		headers: map[string]string{
			constants.HeaderAccept:      constants.ContentTypeJSON,
			constants.HeaderContentType: constants.ContentTypeForm,
		},
	})
	c.metrics.ObserveGrant(g.Name, err)

	if err != nil {
		return nil, nil, err
	}

	token, _ := tokenFromData(resp.Data)

	return resp, token, nil
}

// tokenGrant runs a grant that must yield a token.
func (c *Client) tokenGrant(ctx context.Context, g auth.Grant) (*sdk.Response, *tokenstore.Token, error) {
	resp, token, err := c.grant(ctx, g)
	if err != nil {
		return nil, nil, err
	}

	if token == nil {
		return nil, nil, fmt.Errorf("%w: %s grant", sdk.ErrNoTokenResponse, g.Name)
	}

	return resp, token, nil
}

// shared runs fetch once for all concurrent callers of key. The fetch
// keeps the first caller's context values but not its cancellation; each
// caller stops waiting when its own context ends.
func (c *Client) shared(ctx context.Context, key string, fetch func(context.Context) (*tokenstore.Token, error)) (*tokenstore.Token, error) {
	flightCtx := context.WithoutCancel(ctx)

	ch := c.flights.DoChan(key, func() (interface{}, error) {
		return fetch(flightCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for shared token fetch: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		token, _ := res.Val.(*tokenstore.Token)

		return token, nil
	}
}

// anonymousToken fetches and stores a public-read token, or an integration
// token when configured. Concurrent callers share one fetch.
func (c *Client) anonymousToken(ctx context.Context) (*tokenstore.Token, error) {
	token, err := c.shared(ctx, "anonymous", func(ctx context.Context) (*tokenstore.Token, error) {
		g := auth.Anonymous(c.clientID)
		if c.integrationAPI {
			g = auth.Integration(c.clientID, c.clientSecret)
		}

		c.logger.Debug("Fetching anonymous token", map[string]interface{}{"grant": g.Name})

		_, token, err := c.tokenGrant(ctx, g)

		return token, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching anonymous token: %w", err)
	}

	return token, nil
}

// refreshToken exchanges refreshToken for a new token. A refresh the
// server rejects with 400 or 401 removes the dead token from the store.
func (c *Client) refreshToken(ctx context.Context, refreshToken, clientSecret string) (*tokenstore.Token, error) {
	return c.shared(ctx, "refresh:"+refreshToken, func(ctx context.Context) (*tokenstore.Token, error) {
		c.logger.Debug("Refreshing token", map[string]interface{}{"trusted": clientSecret != ""})

		_, token, err := c.tokenGrant(ctx, auth.Refresh(c.clientID, clientSecret, refreshToken))
		if err == nil {
			return token, nil
		}

		status := sdk.StatusCode(err)
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			c.logger.Warn("Discarding rejected refresh token", map[string]interface{}{"status": status})

			removeErr := c.store.RemoveToken(ctx)
			if removeErr != nil {
				return nil, fmt.Errorf("removing rejected token: %w", removeErr)
			}
		}

		return nil, err
	})
}

// Login logs a user in with the password grant.
func (c *Client) Login(ctx context.Context, username, password string) (*sdk.Response, error) {
	if username == "" || password == "" {
		return nil, sdk.ErrCredentialsRequired
	}

	resp, _, err := c.tokenGrant(ctx, auth.Password(c.clientID, username, password))

	return resp, err
}

// LoginWithIdp logs a user in with an identity provider token.
func (c *Client) LoginWithIdp(ctx context.Context, params sdk.IdpParams) (*sdk.Response, error) {
	g := auth.Idp(c.clientID, c.clientSecret, params.IdpID, params.IdpClientID, params.IdpToken)

	err := g.Require("idp_id", "idp_client_id", "idp_token")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sdk.ErrIdpParamsRequired, err)
	}

	resp, _, err := c.tokenGrant(ctx, g)

	return resp, err
}

// LoginAs completes an authorization code login.
func (c *Client) LoginAs(ctx context.Context, params sdk.LoginAsParams) (*sdk.Response, error) {
	g := auth.AuthorizationCode(c.clientID, params.Code, params.RedirectURI, params.CodeVerifier)

	err := g.Require("code", "redirect_uri", "code_verifier")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sdk.ErrLoginAsParamsRequired, err)
	}

	resp, _, err := c.tokenGrant(ctx, g)

	return resp, err
}

// ExchangeToken trades the stored user token for a trusted one.
func (c *Client) ExchangeToken(ctx context.Context) (*sdk.Response, error) {
	if c.clientSecret == "" {
		return nil, sdk.ErrClientSecretRequired
	}

	token, err := c.store.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stored token: %w", err)
	}

	if !token.Valid() {
		return nil, sdk.ErrNoToken
	}

	resp, _, err := c.tokenGrant(ctx, auth.TokenExchange(c.clientID, c.clientSecret, token.AccessToken))

	return resp, err
}

// Logout revokes the stored refresh token and clears the store. The store
// is cleared even if revocation fails. Without a refresh token nothing is
// sent and the response is nil.
func (c *Client) Logout(ctx context.Context) (*sdk.Response, error) {
	token, err := c.store.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stored token: %w", err)
	}

	var (
		resp      *sdk.Response
		revokeErr error
	)

	if token.HasRefreshToken() {
		resp, _, revokeErr = c.grant(ctx, auth.Revoke(c.clientID, token.RefreshToken))
	}

	err = c.store.RemoveToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("removing token: %w", err)
	}

	if revokeErr != nil {
		return nil, revokeErr
	}

	return resp, nil
}

// AuthInfo describes the stored token. It makes no network calls.
func (c *Client) AuthInfo(ctx context.Context) (*sdk.AuthInfo, error) {
	token, err := c.store.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading stored token: %w", err)
	}

	if !token.Valid() {
		return &sdk.AuthInfo{}, nil
	}

	info := &sdk.AuthInfo{
		Scopes:       token.Scopes(),
		IsAnonymous:  token.HasScope(tokenstore.ScopePublicRead),
		IsLoggedInAs: token.HasScope(tokenstore.ScopeUserLimited),
		GrantType:    auth.GrantClientCredentials,
	}

	if token.HasRefreshToken() {
		info.GrantType = auth.GrantRefreshToken
	}

	return info, nil
}
