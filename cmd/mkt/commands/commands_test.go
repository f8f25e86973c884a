//nolint:testpackage // Need access to internal helpers
package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.Equal(t, "Login to the marketplace API", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	flags := []string{"username", "password", "idp-id", "idp-client-id", "idp-token", "code", "redirect-uri", "code-verifier"}
	for _, flagName := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}

	assert.Equal(t, "u", cmd.Flags().Lookup("username").Shorthand)
}

func TestNewTokenCommand(t *testing.T) {
	t.Parallel()

	cmd := NewTokenCommand()
	assert.Equal(t, "token", cmd.Use)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}

	assert.ElementsMatch(t, []string{"show", "exchange", "clear"}, names)
}

func TestRequestCommands(t *testing.T) {
	t.Parallel()

	get := NewGetCommand()
	assert.Equal(t, "get", get.Name())
	assert.NotNil(t, get.Flags().Lookup("header"))
	assert.NotNil(t, get.Flags().Lookup("query"))

	post := NewPostCommand()
	assert.Equal(t, "post", post.Name())
	assert.NotNil(t, post.Flags().Lookup("trusted"))
	assert.Equal(t, "d", post.Flags().Lookup("data").Shorthand)
}

func TestParseParams(t *testing.T) {
	t.Parallel()

	params, err := parseParams([]string{
		"perPage=5",
		"include=author,images",
		"pub_verified=true",
		`publicData={"color":"red"}`,
		"id=5c0e1d6b-9a7e-4b0e-8f1e-2d8c7a6b5e4f",
		"title=",
		"expr=a=b",
	})
	require.NoError(t, err)

	assert.Equal(t, json.Number("5"), params["perPage"])
	assert.Equal(t, "author,images", params["include"])
	assert.Equal(t, true, params["pub_verified"])
	assert.Equal(t, map[string]any{"color": "red"}, params["publicData"])
	assert.Equal(t, "5c0e1d6b-9a7e-4b0e-8f1e-2d8c7a6b5e4f", params["id"])
	assert.Equal(t, "", params["title"])
	assert.Equal(t, "a=b", params["expr"])

	_, err = parseParams([]string{"novalue"})
	require.ErrorIs(t, err, constants.ErrInvalidParam)

	_, err = parseParams([]string{"=value"})
	require.ErrorIs(t, err, constants.ErrInvalidParam)
}

func TestBuildEndpointRequest(t *testing.T) {
	t.Parallel()

	req, err := buildEndpointRequest(http.MethodPost, []string{"own_listings/update", "title=Bike"}, &requestOptions{
		data:    `{"price":{"amount":1000,"currency":"EUR"}}`,
		headers: []string{"X-Custom: yes"},
		query:   []string{"expand=true"},
		trusted: true,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "own_listings/update", req.Path)
	assert.True(t, req.Trusted)
	assert.Equal(t, "Bike", req.Params["title"])
	assert.Contains(t, req.Params, "price")
	assert.Equal(t, "true", req.Query.Get("expand"))
	assert.Equal(t, "yes", req.Headers["X-Custom"])

	_, err = buildEndpointRequest(http.MethodGet, []string{" "}, &requestOptions{})
	require.ErrorIs(t, err, constants.ErrPathRequired)

	_, err = buildEndpointRequest(http.MethodPost, []string{"p"}, &requestOptions{data: "[1"})
	require.ErrorIs(t, err, constants.ErrInvalidPayload)

	_, err = buildEndpointRequest(http.MethodGet, []string{"p"}, &requestOptions{headers: []string{"broken"}})
	require.ErrorIs(t, err, constants.ErrInvalidParam)
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	config := &Config{}

	require.NoError(t, setConfigValue(config, "client_id", "abc"))
	require.NoError(t, setConfigValue(config, "wire_format", "json"))
	require.NoError(t, setConfigValue(config, "token_store.type", "badger"))
	require.NoError(t, setConfigValue(config, "token_store.path", "/tmp/tokens"))

	assert.Equal(t, "abc", config.ClientID)
	assert.Equal(t, "json", config.WireFormat)
	assert.Equal(t, "badger", config.TokenStore.Type)
	assert.Equal(t, "/tmp/tokens", config.TokenStore.Path)

	require.ErrorIs(t, setConfigValue(config, "wire_format", "edn"), constants.ErrUnknownWireFormat)
	require.ErrorIs(t, setConfigValue(config, "token_store.type", "redis"), constants.ErrUnknownStoreType)
	require.ErrorIs(t, setConfigValue(config, "organization", "x"), constants.ErrUnknownConfigKey)

	require.NoError(t, setConfigValue(config, "client_id", ""))
	assert.Empty(t, config.ClientID)
}

func TestTokenStoreConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name   string
		config TokenStoreConfig
		check  func(t *testing.T, cfg *tokenstore.Config)
	}{
		{
			name:   "memory",
			config: TokenStoreConfig{Type: "memory"},
			check: func(t *testing.T, cfg *tokenstore.Config) {
				t.Helper()
				assert.Equal(t, tokenstore.StoreTypeMemory, cfg.Type)
			},
		},
		{
			name:   "file",
			config: TokenStoreConfig{Type: "file", Path: filepath.Join(dir, "token.json")},
			check: func(t *testing.T, cfg *tokenstore.Config) {
				t.Helper()
				assert.Equal(t, filepath.Join(dir, "token.json"), cfg.FilePath)
			},
		},
		{
			name:   "badger",
			config: TokenStoreConfig{Type: "badger", Path: dir},
			check: func(t *testing.T, cfg *tokenstore.Config) {
				t.Helper()
				require.NotNil(t, cfg.Badger)
				assert.Equal(t, dir, cfg.Badger.Dir)
				assert.Equal(t, "token:client-id", cfg.Badger.Key)
			},
		},
		{
			name:   "nats",
			config: TokenStoreConfig{Type: "nats", NATSURL: "nats://nats.example.com:4222"},
			check: func(t *testing.T, cfg *tokenstore.Config) {
				t.Helper()
				require.NotNil(t, cfg.NATS)
				assert.Equal(t, "nats://nats.example.com:4222", cfg.NATS.URL)
				assert.Equal(t, defaultNATSBucket, cfg.NATS.Bucket)
				assert.Equal(t, "token.client-id", cfg.NATS.Key)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := tokenStoreConfig(&Config{ClientID: "client-id", TokenStore: tt.config})
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}

	_, err := tokenStoreConfig(&Config{TokenStore: TokenStoreConfig{Type: "redis"}})
	require.ErrorIs(t, err, constants.ErrUnknownStoreType)
}

func TestBuildTokenStatus(t *testing.T) {
	t.Parallel()

	token := &tokenstore.Token{
		AccessToken:  "eyJhbGciOiJIUzI1NiJ9.payload.signature",
		TokenType:    "bearer",
		ExpiresIn:    86400,
		Scope:        "user",
		RefreshToken: "refresh-token-value",
	}

	masked := buildTokenStatus(token, false)
	assert.Equal(t, "eyJhbGciOiJI...", masked.AccessToken)
	assert.Equal(t, "refresh-toke...", masked.RefreshToken)
	assert.True(t, masked.RefreshAvailable)
	assert.Equal(t, []string{"user"}, masked.Scopes)

	revealed := buildTokenStatus(token, true)
	assert.Equal(t, token.AccessToken, revealed.AccessToken)

	assert.Equal(t, constants.MaskedSecret, maskToken("short"))
	assert.Equal(t, constants.None, maskToken(""))
}

func TestDisplayToken(t *testing.T) {
	t.Parallel()

	status := buildTokenStatus(&tokenstore.Token{AccessToken: "abc", Scope: "public-read"}, false)

	var out bytes.Buffer

	require.NoError(t, displayToken(&out, constants.FormatTable, status))
	assert.Contains(t, out.String(), "Refresh Token Available")

	out.Reset()
	require.NoError(t, displayToken(&out, constants.FormatYAML, status))
	assert.Contains(t, out.String(), "scopes:")
	assert.Contains(t, out.String(), "public-read")
}

func TestDisplayAuthInfo(t *testing.T) {
	t.Parallel()

	info := &sdk.AuthInfo{IsAnonymous: true, Scopes: []string{"public-read"}, GrantType: "client_credentials"}

	var out bytes.Buffer

	require.NoError(t, displayAuthInfo(&out, constants.FormatJSON, info))
	assert.JSONEq(t, `{"isAnonymous":true,"scopes":["public-read"],"grantType":"client_credentials","isLoggedInAs":false}`, out.String())

	out.Reset()
	require.NoError(t, displayAuthInfo(&out, constants.FormatTable, info))
	assert.Contains(t, out.String(), "client_credentials")

	out.Reset()
	require.NoError(t, displayAuthInfo(&out, constants.FormatTable, &sdk.AuthInfo{}))
	assert.Equal(t, "Not authenticated\n", out.String())
}

func TestWriteData(t *testing.T) {
	t.Parallel()

	data := map[string]any{
		"data": map[string]any{
			"id": types.NewUUID("5c0e1d6b-9a7e-4b0e-8f1e-2d8c7a6b5e4f"),
			"attributes": map[string]any{
				"price":       types.MustMoney(1000, "EUR"),
				"geolocation": types.MustLatLng(60.16, 24.93),
			},
		},
	}

	var out bytes.Buffer

	require.NoError(t, writeData(&out, constants.FormatTable, data))
	assert.JSONEq(t, `{
		"data": {
			"id": "5c0e1d6b-9a7e-4b0e-8f1e-2d8c7a6b5e4f",
			"attributes": {
				"price": {"amount": 1000, "currency": "EUR"},
				"geolocation": {"lat": 60.16, "lng": 24.93}
			}
		}
	}`, out.String())

	out.Reset()
	require.NoError(t, writeData(&out, constants.FormatYAML, data))
	assert.Contains(t, out.String(), "currency: EUR")
}

func TestPromptCredentials(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	opts := &loginOptions{}
	err := promptCredentials(opts, strings.NewReader("joe@example.com\nsecret\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "joe@example.com", opts.username)
	assert.Equal(t, "secret", opts.password)
	assert.Contains(t, out.String(), "Username: ")

	err = promptCredentials(&loginOptions{}, strings.NewReader("\n"), &out)
	require.ErrorIs(t, err, constants.ErrUsernameRequired)

	err = promptCredentials(&loginOptions{username: "joe"}, strings.NewReader("\n"), &out)
	require.ErrorIs(t, err, constants.ErrPasswordRequired)
}

// recordingAuthClient records which login flow ran.
type recordingAuthClient struct {
	sdk.AuthClient

	flow   string
	idp    sdk.IdpParams
	as     sdk.LoginAsParams
	user   string
	secret string
}

func (c *recordingAuthClient) Login(_ context.Context, username, password string) (*sdk.Response, error) {
	c.flow, c.user, c.secret = "password", username, password

	return &sdk.Response{Status: http.StatusOK}, nil
}

func (c *recordingAuthClient) LoginWithIdp(_ context.Context, params sdk.IdpParams) (*sdk.Response, error) {
	c.flow, c.idp = "idp", params

	return &sdk.Response{Status: http.StatusOK}, nil
}

func (c *recordingAuthClient) LoginAs(_ context.Context, params sdk.LoginAsParams) (*sdk.Response, error) {
	c.flow, c.as = "login-as", params

	return &sdk.Response{Status: http.StatusOK}, nil
}

func TestRunLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	client := &recordingAuthClient{}
	require.NoError(t, runLogin(ctx, client, &loginOptions{username: "joe", password: "pw"}, strings.NewReader(""), &bytes.Buffer{}))
	assert.Equal(t, "password", client.flow)
	assert.Equal(t, "joe", client.user)

	client = &recordingAuthClient{}
	require.NoError(t, runLogin(ctx, client, &loginOptions{idpID: "facebook", idpClientID: "fb", idpToken: "tok"}, nil, nil))
	assert.Equal(t, "idp", client.flow)
	assert.Equal(t, "facebook", client.idp.IdpID)

	client = &recordingAuthClient{}
	require.NoError(t, runLogin(ctx, client, &loginOptions{code: "c", redirectURI: "https://r", codeVerifier: "v"}, nil, nil))
	assert.Equal(t, "login-as", client.flow)
	assert.Equal(t, "v", client.as.CodeVerifier)
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")

		switch request.URL.Path {
		case "/v1/auth/token":
			_, _ = writer.Write([]byte(`{"access_token":"anon","token_type":"bearer","expires_in":86400,"scope":"public-read"}`))
		case "/v1/api/marketplace/show":
			assert.NotEmpty(t, request.Header.Get(sdk.RequestIDHeader))
			_, _ = writer.Write([]byte(`{"data":{"id":"16c6a4b8-88ee-429b-835a-6725206cd08c","type":"marketplace"}}`))
		default:
			writer.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	config := &Config{
		ClientID:   "client-id",
		BaseURL:    server.URL,
		WireFormat: constants.WireFormatJSON,
		TokenStore: TokenStoreConfig{Type: "memory"},
	}

	client, closer, err := newClient(context.Background(), config, hclog.NewNullLogger())
	require.NoError(t, err)

	defer func() {
		_ = closer.Close()
	}()

	resp, err := client.Get(context.Background(), "marketplace/show", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)

	_, _, err = newClient(context.Background(), &Config{}, hclog.NewNullLogger())
	require.ErrorIs(t, err, constants.ErrClientIDRequired)
}
