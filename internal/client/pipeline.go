package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	mkthttp "github.com/fivetwenty-io/marketplace-sdk/internal/http"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
)

// authMode says how a call is credentialed.
type authMode int

const (
	// authRequired attaches the stored token, fetching an anonymous one if
	// the store is empty, and recovers once from an expired token.
	authRequired authMode = iota

	// authOptional attaches the stored token if there is one.
	authOptional

	// authNone sends no credential. Token grants use it.
	authNone
)

// call is one request on its way through the pipeline.
type call struct {
	method  string
	path    string
	query   url.Values
	body    []byte
	headers map[string]string
	mode    authMode
}

// send runs the request stages, the exchange, and the response stages. An
// authRequired call that fails with an expired token is refreshed and sent
// once more.
func (c *Client) send(ctx context.Context, call *call) (*sdk.Response, error) {
	err := c.attachCredential(ctx, call)
	if err != nil {
		return nil, err
	}

	resp, err := c.exchange(ctx, call)
	if err != nil {
		if call.mode != authRequired {
			return nil, err
		}

		return c.refreshAndReplay(ctx, call, err)
	}

	return c.persist(ctx, call, resp)
}

// attachCredential sets the Authorization header unless the caller already
// did or the call is a token grant.
func (c *Client) attachCredential(ctx context.Context, call *call) error {
	if call.mode == authNone || hasHeader(call.headers, constants.HeaderAuthorization) {
		return nil
	}

	token, err := c.store.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("reading stored token: %w", err)
	}

	if !token.Valid() {
		if call.mode != authRequired {
			return nil
		}

		token, err = c.anonymousToken(ctx)
		if err != nil {
			return err
		}
	}

	call.headers[constants.HeaderAuthorization] = token.AuthorizationHeader()

	return nil
}

// exchange sends a call once through the interceptors and the transport,
// and decodes the response. Non-2xx statuses return *sdk.APIError with the
// decoded body in Data.
func (c *Client) exchange(ctx context.Context, call *call) (*sdk.Response, error) {
	ireq := &sdk.InterceptedRequest{
		Method:  call.method,
		Path:    call.path,
		Headers: make(http.Header, len(call.headers)),
		Body:    call.body,
	}

	for key, value := range call.headers {
		ireq.Headers.Set(key, value)
	}

	err := c.chain.ExecuteRequestInterceptors(ctx, ireq)
	if err != nil {
		return nil, err
	}

	// Interceptor headers stick to the call so a replay carries them.
	call.headers = make(map[string]string, len(ireq.Headers))
	for key := range ireq.Headers {
		call.headers[key] = ireq.Headers.Get(key)
	}

	call.body = ireq.Body

	req := &mkthttp.Request{
		Method:  call.method,
		Path:    call.path,
		Query:   call.query,
		Headers: call.headers,
	}

	if len(call.body) > 0 {
		req.Body = call.body
	}

	httpResp, sendErr := c.httpClient.Do(ctx, req)

	iresp := &sdk.InterceptedResponse{Error: sendErr}
	if httpResp != nil {
		iresp.StatusCode = httpResp.StatusCode
		iresp.Headers = httpResp.Headers
		iresp.Body = httpResp.Body
	}

	err = c.chain.ExecuteResponseInterceptors(ctx, ireq, iresp)
	if err != nil && sendErr == nil {
		return nil, err
	}

	if sendErr != nil {
		apiErr := &sdk.APIError{}
		if errors.As(sendErr, &apiErr) && httpResp != nil {
			apiErr.Data, _ = c.decodeBody(httpResp.Headers.Get(constants.HeaderContentType), httpResp.Body)

			return nil, apiErr
		}

		return nil, sendErr
	}

	data, err := c.decodeBody(httpResp.Headers.Get(constants.HeaderContentType), httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &sdk.Response{
		Status:  httpResp.StatusCode,
		Headers: httpResp.Headers,
		Data:    data,
	}, nil
}

// persist stores a token found in the response body, or clears the store
// when the response reports a revocation.
func (c *Client) persist(ctx context.Context, call *call, resp *sdk.Response) (*sdk.Response, error) {
	if token, ok := tokenFromData(resp.Data); ok {
		err := c.store.SetToken(ctx, token)
		if err != nil {
			return nil, fmt.Errorf("saving token: %w", err)
		}

		return resp, nil
	}

	if call.path == c.authPath(constants.PathRevoke) || isRevoked(resp.Data) {
		err := c.store.RemoveToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("removing token: %w", err)
		}
	}

	return resp, nil
}

// refreshAndReplay handles a failed authRequired call. A 401, or a 403 on
// a trusted route when the token has trusted scope, is answered by one
// refresh and one resend. Anything else, or a failed refresh, returns
// origErr.
func (c *Client) refreshAndReplay(ctx context.Context, call *call, origErr error) (*sdk.Response, error) {
	status := sdk.StatusCode(origErr)
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		return nil, origErr
	}

	token, err := c.store.GetToken(ctx)
	if err != nil || !token.Valid() || !token.HasRefreshToken() {
		return nil, origErr
	}

	trustedToken := token.HasScope(tokenstore.ScopeTrustedUser)

	if status == http.StatusForbidden && (!trustedToken || !c.isTrusted(call.path)) {
		return nil, origErr
	}

	secret := ""
	if trustedToken {
		secret = c.clientSecret
	}

	fresh, err := c.refreshToken(ctx, token.RefreshToken, secret)
	c.metrics.ObserveRefresh(err)

	if err != nil {
		c.logger.Debug("Token refresh failed", map[string]interface{}{
			"path":  call.path,
			"error": err.Error(),
		})

		return nil, origErr
	}

	call.headers[constants.HeaderAuthorization] = fresh.AuthorizationHeader()

	resp, err := c.exchange(ctx, call)
	if err != nil {
		return nil, err
	}

	return c.persist(ctx, call, resp)
}

func hasHeader(headers map[string]string, name string) bool {
	for key, value := range headers {
		if strings.EqualFold(key, name) && value != "" {
			return true
		}
	}

	return false
}

// tokenFromData extracts a token payload from a decoded response body.
func tokenFromData(data any) (*tokenstore.Token, bool) {
	obj, ok := data.(map[string]any)
	if !ok {
		return nil, false
	}

	accessToken, _ := obj["access_token"].(string)
	if accessToken == "" {
		return nil, false
	}

	token := &tokenstore.Token{AccessToken: accessToken}
	token.TokenType, _ = obj["token_type"].(string)
	token.Scope, _ = obj["scope"].(string)
	token.RefreshToken, _ = obj["refresh_token"].(string)
	token.ExpiresIn = int(int64Field(obj["expires_in"]))

	return token, true
}

func isRevoked(data any) bool {
	obj, ok := data.(map[string]any)
	if !ok {
		return false
	}

	revoked, _ := obj["revoked"].(bool)

	return revoked
}
