package auth_test

import (
	"net/url"
	"testing"

	"github.com/fivetwenty-io/marketplace-sdk/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Table of every grant
func TestGrants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		grant         auth.Grant
		endpoint      string
		authenticated bool
		form          url.Values
	}{
		{
			name:     "anonymous",
			grant:    auth.Anonymous("cid"),
			endpoint: "token",
			form: url.Values{
				"client_id":  {"cid"},
				"grant_type": {"client_credentials"},
				"scope":      {"public-read"},
			},
		},
		{
			name:     "integration",
			grant:    auth.Integration("cid", "secret"),
			endpoint: "token",
			form: url.Values{
				"client_id":     {"cid"},
				"client_secret": {"secret"},
				"grant_type":    {"client_credentials"},
				"scope":         {"integ"},
			},
		},
		{
			name:     "password",
			grant:    auth.Password("cid", "joe@example.com", "pw"),
			endpoint: "token",
			form: url.Values{
				"client_id":  {"cid"},
				"grant_type": {"password"},
				"username":   {"joe@example.com"},
				"password":   {"pw"},
				"scope":      {"user"},
			},
		},
		{
			name:     "idp without secret",
			grant:    auth.Idp("cid", "", "facebook", "fb-client", "fb-token"),
			endpoint: "auth_with_idp",
			form: url.Values{
				"client_id":     {"cid"},
				"idp_id":        {"facebook"},
				"idp_client_id": {"fb-client"},
				"idp_token":     {"fb-token"},
			},
		},
		{
			name:     "refresh",
			grant:    auth.Refresh("cid", "", "rt"),
			endpoint: "token",
			form: url.Values{
				"client_id":     {"cid"},
				"grant_type":    {"refresh_token"},
				"refresh_token": {"rt"},
			},
		},
		{
			name:     "trusted refresh",
			grant:    auth.Refresh("cid", "secret", "rt"),
			endpoint: "token",
			form: url.Values{
				"client_id":     {"cid"},
				"client_secret": {"secret"},
				"grant_type":    {"refresh_token"},
				"refresh_token": {"rt"},
			},
		},
		{
			name:     "token exchange",
			grant:    auth.TokenExchange("cid", "secret", "at"),
			endpoint: "token",
			form: url.Values{
				"client_id":     {"cid"},
				"client_secret": {"secret"},
				"grant_type":    {"token_exchange"},
				"scope":         {"trusted:user"},
				"subject_token": {"at"},
			},
		},
		{
			name:     "authorization code",
			grant:    auth.AuthorizationCode("cid", "code", "https://example.com/cb", "verifier"),
			endpoint: "token",
			form: url.Values{
				"client_id":     {"cid"},
				"grant_type":    {"authorization_code"},
				"code":          {"code"},
				"redirect_uri":  {"https://example.com/cb"},
				"code_verifier": {"verifier"},
			},
		},
		{
			name:          "revoke",
			grant:         auth.Revoke("cid", "rt"),
			endpoint:      "revoke",
			authenticated: true,
			form: url.Values{
				"client_id": {"cid"},
				"token":     {"rt"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.endpoint, tt.grant.Endpoint)
			assert.Equal(t, tt.authenticated, tt.grant.Authenticated)
			assert.Equal(t, tt.form, tt.grant.Form)

			decoded, err := url.ParseQuery(string(tt.grant.Encode()))
			require.NoError(t, err)
			assert.Equal(t, tt.form, decoded)
		})
	}
}

func TestGrant_Require(t *testing.T) {
	t.Parallel()

	grant := auth.Password("cid", "joe@example.com", "")

	require.NoError(t, grant.Require("client_id", "username"))

	err := grant.Require("username", "password")
	require.ErrorIs(t, err, auth.ErrMissingParameter)
	assert.Equal(t, "password grant: password is required", err.Error())
}
