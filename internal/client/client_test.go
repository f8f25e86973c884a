package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/internal/client"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingID = "5c0e1d6b-9a7e-4b0e-8f1e-2d8c7a6b5e4f"

type authCall struct {
	path          string
	form          url.Values
	authorization string
	contentType   string
}

type apiCall struct {
	method        string
	path          string
	query         url.Values
	authorization string
	requestID     string
	contentType   string
	accept        string
	body          []byte
}

// fakeMarketplace records auth and API calls and answers them with the
// configured handlers.
type fakeMarketplace struct {
	server *httptest.Server

	mu        sync.Mutex
	authCalls []authCall
	apiCalls  []apiCall

	onAuth func(path string, form url.Values) (int, any)
	onAPI  func(call apiCall) (int, string, []byte)
}

func newFakeMarketplace(t *testing.T) *fakeMarketplace {
	t.Helper()

	fake := &fakeMarketplace{
		onAuth: func(path string, form url.Values) (int, any) {
			return http.StatusOK, tokenPayload("anon-token", "", "public-read")
		},
		onAPI: func(call apiCall) (int, string, []byte) {
			return http.StatusOK, "application/json", []byte(`{"data":[]}`)
		},
	}

	fake.server = httptest.NewServer(fake)
	t.Cleanup(fake.server.Close)

	return fake
}

func (f *fakeMarketplace) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	body, _ := io.ReadAll(request.Body)

	if strings.HasPrefix(request.URL.Path, "/v1/auth/") {
		form, _ := url.ParseQuery(string(body))

		f.mu.Lock()
		f.authCalls = append(f.authCalls, authCall{
			path:          request.URL.Path,
			form:          form,
			authorization: request.Header.Get("Authorization"),
			contentType:   request.Header.Get("Content-Type"),
		})
		onAuth := f.onAuth
		f.mu.Unlock()

		status, payload := onAuth(request.URL.Path, form)
		writeJSON(writer, status, payload)

		return
	}

	call := apiCall{
		method:        request.Method,
		path:          request.URL.Path,
		query:         request.URL.Query(),
		authorization: request.Header.Get("Authorization"),
		requestID:     request.Header.Get(sdk.RequestIDHeader),
		contentType:   request.Header.Get("Content-Type"),
		accept:        request.Header.Get("Accept"),
		body:          body,
	}

	f.mu.Lock()
	f.apiCalls = append(f.apiCalls, call)
	onAPI := f.onAPI
	f.mu.Unlock()

	status, contentType, payload := onAPI(call)
	writer.Header().Set("Content-Type", contentType)
	writer.WriteHeader(status)
	_, _ = writer.Write(payload)
}

func (f *fakeMarketplace) recorded() ([]authCall, []apiCall) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]authCall(nil), f.authCalls...), append([]apiCall(nil), f.apiCalls...)
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}

func tokenPayload(access, refresh, scope string) map[string]any {
	payload := map[string]any{
		"access_token": access,
		"token_type":   "bearer",
		"expires_in":   86400,
		"scope":        scope,
	}

	if refresh != "" {
		payload["refresh_token"] = refresh
	}

	return payload
}

func unauthorized() (int, string, []byte) {
	return http.StatusUnauthorized, "application/json",
		[]byte(`{"errors":[{"status":401,"code":"unauthorized","title":"Unauthorized"}]}`)
}

func newTestClient(t *testing.T, fake *fakeMarketplace, mutate func(*sdk.Config)) (*client.Client, *tokenstore.MemoryStore) {
	t.Helper()

	store := tokenstore.NewMemoryStore()
	config := &sdk.Config{
		ClientID:   "client-id",
		BaseURL:    fake.server.URL,
		TokenStore: store,
		WireFormat: sdk.WireFormatJSON,
	}

	if mutate != nil {
		mutate(config)
	}

	cli, err := client.New(context.Background(), config)
	require.NoError(t, err)

	return cli, store
}

func storeToken(t *testing.T, store tokenstore.Store, token *tokenstore.Token) {
	t.Helper()
	require.NoError(t, store.SetToken(context.Background(), token))
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := client.New(ctx, nil)
	require.ErrorIs(t, err, sdk.ErrConfigRequired)

	_, err = client.New(ctx, &sdk.Config{TokenStore: tokenstore.NewMemoryStore()})
	require.ErrorIs(t, err, sdk.ErrClientIDRequired)

	_, err = client.New(ctx, &sdk.Config{ClientID: "id"})
	require.ErrorIs(t, err, sdk.ErrTokenStoreRequired)

	_, err = client.New(ctx, &sdk.Config{ClientID: "id", TokenStore: tokenstore.NewMemoryStore(), WireFormat: "xml"})
	require.ErrorIs(t, err, sdk.ErrInvalidWireFormat)
}

//nolint:funlen // End to end pipeline scenario
func TestClient_AnonymousTokenAndDecoding(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	fake.onAPI = func(call apiCall) (int, string, []byte) {
		return http.StatusOK, "application/json", []byte(`{
			"data": [{
				"id": {"uuid": "` + listingID + `"},
				"type": "listing",
				"attributes": {
					"price": {"amount": 1000, "currency": "USD"},
					"createdAt": "2024-01-02T03:04:05.000Z",
					"geolocation": {"lat": 60.16, "lng": 24.93}
				}
			}]
		}`)
	}

	cli, store := newTestClient(t, fake, nil)

	resp, err := cli.Get(context.Background(), "listings/query", map[string]any{"perPage": 5, "keywords": "bike"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	authCalls, apiCalls := fake.recorded()
	require.Len(t, authCalls, 1)
	assert.Equal(t, "/v1/auth/token", authCalls[0].path)
	assert.Equal(t, "client_credentials", authCalls[0].form.Get("grant_type"))
	assert.Equal(t, "public-read", authCalls[0].form.Get("scope"))
	assert.Equal(t, "client-id", authCalls[0].form.Get("client_id"))
	assert.Equal(t, "application/x-www-form-urlencoded", authCalls[0].contentType)
	assert.Empty(t, authCalls[0].authorization)

	require.Len(t, apiCalls, 1)
	assert.Equal(t, "/v1/api/listings/query", apiCalls[0].path)
	assert.Equal(t, "Bearer anon-token", apiCalls[0].authorization)
	assert.Equal(t, "5", apiCalls[0].query.Get("perPage"))
	assert.Equal(t, "bike", apiCalls[0].query.Get("keywords"))
	assert.Equal(t, "application/json", apiCalls[0].accept)
	assert.Empty(t, apiCalls[0].body)

	stored, err := store.GetToken(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "anon-token", stored.AccessToken)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)

	items, ok := data["data"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)

	listing, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, types.NewUUID(listingID), listing["id"])

	attributes, ok := listing["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, types.MustMoney(1000, "USD"), attributes["price"])
	assert.Equal(t, types.MustLatLng(60.16, 24.93), attributes["geolocation"])

	createdAt, ok := attributes["createdAt"].(time.Time)
	require.True(t, ok)
	assert.True(t, createdAt.Equal(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestClient_ExistingTokenIsReused(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	cli, store := newTestClient(t, fake, nil)
	storeToken(t, store, &tokenstore.Token{AccessToken: "user-token", TokenType: "bearer", Scope: "user"})

	_, err := cli.Get(context.Background(), "/v1/api/users/show", nil)
	require.NoError(t, err)

	authCalls, apiCalls := fake.recorded()
	assert.Empty(t, authCalls)
	require.Len(t, apiCalls, 1)
	assert.Equal(t, "/v1/api/users/show", apiCalls[0].path)
	assert.Equal(t, "Bearer user-token", apiCalls[0].authorization)
}

func TestClient_CallerAuthorizationHeader(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	cli, _ := newTestClient(t, fake, nil)

	_, err := cli.Do(context.Background(), &sdk.EndpointRequest{
		Method:  http.MethodGet,
		Path:    "current_user/show",
		Headers: map[string]string{"Authorization": "Bearer caller-token"},
	})
	require.NoError(t, err)

	authCalls, apiCalls := fake.recorded()
	assert.Empty(t, authCalls)
	require.Len(t, apiCalls, 1)
	assert.Equal(t, "Bearer caller-token", apiCalls[0].authorization)
}

func TestClient_QueryHoisting(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	cli, _ := newTestClient(t, fake, nil)

	_, err := cli.Do(context.Background(), &sdk.EndpointRequest{
		Method: http.MethodPost,
		Path:   "own_listings/update",
		Params: map[string]any{
			"page":       2,
			"include":    []string{"a", "b"},
			"otherField": 1,
		},
		Query: url.Values{"expand": {"true"}},
	})
	require.NoError(t, err)

	_, apiCalls := fake.recorded()
	require.Len(t, apiCalls, 1)
	assert.Equal(t, "POST", apiCalls[0].method)
	assert.Equal(t, "2", apiCalls[0].query.Get("page"))
	assert.Equal(t, "a,b", apiCalls[0].query.Get("include"))
	assert.Equal(t, "true", apiCalls[0].query.Get("expand"))
	assert.Equal(t, "application/json", apiCalls[0].contentType)
	assert.JSONEq(t, `{"otherField":1}`, string(apiCalls[0].body))
}

func TestClient_JSONBodyRichTypes(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	cli, _ := newTestClient(t, fake, nil)

	_, err := cli.Post(context.Background(), "own_listings/create", map[string]any{
		"id":          types.NewUUID(listingID),
		"price":       types.MustMoney(5000, "EUR"),
		"geolocation": types.MustLatLng(1.5, 2.5),
		"start":       time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	})
	require.NoError(t, err)

	_, apiCalls := fake.recorded()
	require.Len(t, apiCalls, 1)
	assert.JSONEq(t, `{
		"id": "`+listingID+`",
		"price": {"amount": 5000, "currency": "EUR"},
		"geolocation": {"lat": 1.5, "lng": 2.5},
		"start": "2024-05-06T07:08:09Z"
	}`, string(apiCalls[0].body))
}

//nolint:funlen // Transit request and response round trip
func TestClient_Transit(t *testing.T) {
	t.Parallel()

	type point struct {
		X float64
		Y float64
	}

	fake := newFakeMarketplace(t)
	fake.onAPI = func(call apiCall) (int, string, []byte) {
		return http.StatusOK, "application/transit+json",
			[]byte(`["^ ","~:data",["^ ","~:id","~u` + listingID + `","~:attributes",["^ ","~:price",["~#mn",[1000,"EUR"]],"~:location",["~#geo",[60.16,24.93]]]]]`)
	}

	cli, store := newTestClient(t, fake, func(config *sdk.Config) {
		config.WireFormat = sdk.WireFormatTransit
		config.TypeHandlers = []types.TypeHandler{{
			SDKType: types.KindLatLng,
			AppType: types.Instance[point](),
			Writer: func(v any) (any, error) {
				p, _ := v.(point)

				return types.NewLatLng(p.X, p.Y)
			},
			Reader: func(v any) (any, error) {
				p, _ := v.(types.LatLng)
				lat, lng := p.Float64()

				return point{X: lat, Y: lng}, nil
			},
		}}
	})
	storeToken(t, store, &tokenstore.Token{AccessToken: "user-token", TokenType: "bearer", Scope: "user"})

	resp, err := cli.Post(context.Background(), "own_listings/create", map[string]any{
		"include":  []string{"images"},
		"title":    "Bike",
		"location": point{X: 1.5, Y: 2.5},
	})
	require.NoError(t, err)

	_, apiCalls := fake.recorded()
	require.Len(t, apiCalls, 1)
	assert.Equal(t, "application/transit+json", apiCalls[0].contentType)
	assert.Equal(t, "application/transit+json", apiCalls[0].accept)
	assert.Equal(t, "images", apiCalls[0].query.Get("include"))
	assert.JSONEq(t, `["^ ","~:location",["~#geo",[1.5,2.5]],"~:title","Bike"]`, string(apiCalls[0].body))

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)

	listing, ok := data["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, types.NewUUID(listingID), listing["id"])

	attributes, ok := listing["attributes"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, types.MustMoney(1000, "EUR"), attributes["price"])
	assert.Equal(t, point{X: 60.16, Y: 24.93}, attributes["location"])
}

func TestClient_TransitPreparesStructs(t *testing.T) {
	t.Parallel()

	type details struct {
		Color string `json:"color"`
		Gears int    `json:"gears"`
	}

	fake := newFakeMarketplace(t)
	cli, store := newTestClient(t, fake, func(config *sdk.Config) {
		config.WireFormat = sdk.WireFormatTransit
		config.TransitVerbose = true
	})
	storeToken(t, store, &tokenstore.Token{AccessToken: "user-token", Scope: "user"})

	_, err := cli.Post(context.Background(), "own_listings/update", map[string]any{
		"publicData": details{Color: "red", Gears: 21},
	})
	require.NoError(t, err)

	_, apiCalls := fake.recorded()
	require.Len(t, apiCalls, 1)
	assert.JSONEq(t, `{"~:publicData":{"~:color":"red","~:gears":21}}`, string(apiCalls[0].body))
}

//nolint:funlen // Refresh and replay scenario
func TestClient_RefreshAndReplay(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	fake.onAuth = func(path string, form url.Values) (int, any) {
		return http.StatusOK, tokenPayload("new-token", "new-refresh", "user")
	}
	fake.onAPI = func(call apiCall) (int, string, []byte) {
		if call.authorization != "Bearer new-token" {
			return unauthorized()
		}

		return http.StatusOK, "application/json", []byte(`{"data":{"id":"` + listingID + `"}}`)
	}

	chain := sdk.NewInterceptorChain()
	chain.AddRequestInterceptor(sdk.RequestIDInterceptor())

	cli, store := newTestClient(t, fake, func(config *sdk.Config) {
		config.Interceptors = chain
	})
	storeToken(t, store, &tokenstore.Token{
		AccessToken:  "old-token",
		TokenType:    "bearer",
		Scope:        "user",
		RefreshToken: "old-refresh",
	})

	resp, err := cli.Get(context.Background(), "current_user/show", nil)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Status)

	authCalls, apiCalls := fake.recorded()
	require.Len(t, authCalls, 1)
	assert.Equal(t, "refresh_token", authCalls[0].form.Get("grant_type"))
	assert.Equal(t, "old-refresh", authCalls[0].form.Get("refresh_token"))
	assert.Empty(t, authCalls[0].form.Get("client_secret"))

	require.Len(t, apiCalls, 2)
	assert.Equal(t, "Bearer old-token", apiCalls[0].authorization)
	assert.Equal(t, "Bearer new-token", apiCalls[1].authorization)
	assert.NotEmpty(t, apiCalls[0].requestID)
	assert.Equal(t, apiCalls[0].requestID, apiCalls[1].requestID)

	stored, err := store.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "new-token", stored.AccessToken)
	assert.Equal(t, "new-refresh", stored.RefreshToken)
}

func TestClient_UnauthorizedWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	fake.onAPI = func(call apiCall) (int, string, []byte) {
		return unauthorized()
	}

	cli, store := newTestClient(t, fake, nil)
	storeToken(t, store, &tokenstore.Token{AccessToken: "anon-token", Scope: "public-read"})

	_, err := cli.Get(context.Background(), "current_user/show", nil)
	require.Error(t, err)
	assert.True(t, sdk.IsUnauthorized(err))

	apiErr := &sdk.APIError{}
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "unauthorized", apiErr.Errors[0].Code)
	assert.NotNil(t, apiErr.Data)

	authCalls, apiCalls := fake.recorded()
	assert.Empty(t, authCalls)
	assert.Len(t, apiCalls, 1)
}

func TestClient_RefreshRejected(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	fake.onAuth = func(path string, form url.Values) (int, any) {
		return http.StatusUnauthorized, map[string]any{"error": "invalid_grant"}
	}
	fake.onAPI = func(call apiCall) (int, string, []byte) {
		return unauthorized()
	}

	cli, store := newTestClient(t, fake, nil)
	storeToken(t, store, &tokenstore.Token{AccessToken: "old-token", RefreshToken: "dead-refresh", Scope: "user"})

	_, err := cli.Get(context.Background(), "current_user/show", nil)
	require.Error(t, err)

	// The original API error is returned, not the refresh failure.
	apiErr := &sdk.APIError{}
	require.True(t, errors.As(err, &apiErr))
	require.Len(t, apiErr.Errors, 1)
	assert.Equal(t, "unauthorized", apiErr.Errors[0].Code)

	authCalls, apiCalls := fake.recorded()
	assert.Len(t, authCalls, 1)
	assert.Len(t, apiCalls, 1)

	stored, err := store.GetToken(context.Background())
	require.NoError(t, err)
	assert.Nil(t, stored)
}

//nolint:funlen // Trusted route scenarios
func TestClient_ForbiddenOnTrustedRoute(t *testing.T) {
	t.Parallel()

	forbiddenUntilRefreshed := func(call apiCall) (int, string, []byte) {
		if call.authorization == "Bearer trusted-new" {
			return http.StatusOK, "application/json", []byte(`{"data":{}}`)
		}

		return http.StatusForbidden, "application/json", []byte(`{"errors":[{"status":403,"code":"forbidden"}]}`)
	}

	trustedToken := func() *tokenstore.Token {
		return &tokenstore.Token{
			AccessToken:  "trusted-old",
			Scope:        "trusted:user",
			RefreshToken: "trusted-refresh",
		}
	}

	t.Run("refreshes with client secret", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMarketplace(t)
		fake.onAuth = func(path string, form url.Values) (int, any) {
			return http.StatusOK, tokenPayload("trusted-new", "trusted-refresh-2", "trusted:user")
		}
		fake.onAPI = forbiddenUntilRefreshed

		cli, store := newTestClient(t, fake, func(config *sdk.Config) {
			config.ClientSecret = "secret"
		})
		storeToken(t, store, trustedToken())

		_, err := cli.Do(context.Background(), &sdk.EndpointRequest{
			Method:  http.MethodPost,
			Path:    "transactions/transition",
			Params:  map[string]any{"transition": "transition/accept"},
			Trusted: true,
		})
		require.NoError(t, err)

		authCalls, apiCalls := fake.recorded()
		require.Len(t, authCalls, 1)
		assert.Equal(t, "secret", authCalls[0].form.Get("client_secret"))
		require.Len(t, apiCalls, 2)
		assert.JSONEq(t, string(apiCalls[0].body), string(apiCalls[1].body))
	})

	t.Run("seeded route", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMarketplace(t)
		fake.onAuth = func(path string, form url.Values) (int, any) {
			return http.StatusOK, tokenPayload("trusted-new", "", "trusted:user")
		}
		fake.onAPI = forbiddenUntilRefreshed

		cli, store := newTestClient(t, fake, func(config *sdk.Config) {
			config.ClientSecret = "secret"
			config.TrustedRoutes = []string{"transactions/initiate"}
		})
		storeToken(t, store, trustedToken())

		_, err := cli.Post(context.Background(), "transactions/initiate", nil)
		require.NoError(t, err)
	})

	t.Run("untrusted route is not refreshed", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMarketplace(t)
		fake.onAPI = forbiddenUntilRefreshed

		cli, store := newTestClient(t, fake, nil)
		storeToken(t, store, trustedToken())

		_, err := cli.Post(context.Background(), "own_listings/close", nil)
		require.Error(t, err)
		assert.True(t, sdk.IsForbidden(err))

		authCalls, _ := fake.recorded()
		assert.Empty(t, authCalls)
	})

	t.Run("user token is not refreshed", func(t *testing.T) {
		t.Parallel()

		fake := newFakeMarketplace(t)
		fake.onAPI = forbiddenUntilRefreshed

		cli, store := newTestClient(t, fake, nil)
		storeToken(t, store, &tokenstore.Token{AccessToken: "user", Scope: "user", RefreshToken: "rt"})

		_, err := cli.Do(context.Background(), &sdk.EndpointRequest{
			Method:  http.MethodPost,
			Path:    "transactions/transition",
			Trusted: true,
		})
		require.Error(t, err)
		assert.True(t, sdk.IsForbidden(err))

		authCalls, _ := fake.recorded()
		assert.Empty(t, authCalls)
	})
}

func TestClient_ConcurrentAnonymousFetch(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	fake.onAuth = func(path string, form url.Values) (int, any) {
		time.Sleep(200 * time.Millisecond)

		return http.StatusOK, tokenPayload("anon-token", "", "public-read")
	}

	cli, _ := newTestClient(t, fake, nil)

	var wg sync.WaitGroup

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := cli.Get(context.Background(), "listings/query", nil)
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	authCalls, apiCalls := fake.recorded()
	assert.Len(t, authCalls, 1)
	assert.Len(t, apiCalls, 8)
}

func TestClient_SharedFetchSurvivesCallerCancel(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	markStarted := sync.OnceFunc(func() { close(started) })
	releaseAuth := sync.OnceFunc(func() { close(release) })

	defer releaseAuth()

	fake := newFakeMarketplace(t)
	fake.onAuth = func(path string, form url.Values) (int, any) {
		markStarted()
		<-release

		return http.StatusOK, tokenPayload("anon-token", "", "public-read")
	}

	cli, store := newTestClient(t, fake, nil)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	secondErr := make(chan error, 1)

	go func() {
		_, err := cli.Get(firstCtx, "listings/query", nil)
		firstErr <- err
	}()

	<-started

	go func() {
		_, err := cli.Get(context.Background(), "listings/query", nil)
		secondErr <- err
	}()

	// Let the second caller join the in-flight fetch.
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	require.ErrorIs(t, <-firstErr, context.Canceled)

	releaseAuth()
	require.NoError(t, <-secondErr)

	stored, err := store.GetToken(context.Background())
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "anon-token", stored.AccessToken)

	authCalls, apiCalls := fake.recorded()
	assert.Len(t, authCalls, 1)
	assert.Len(t, apiCalls, 1)
}

func TestClient_NonJSONResponse(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	fake.onAPI = func(call apiCall) (int, string, []byte) {
		return http.StatusOK, "text/plain; charset=utf-8", []byte("pong")
	}

	cli, store := newTestClient(t, fake, nil)
	storeToken(t, store, &tokenstore.Token{AccessToken: "t"})

	resp, err := cli.Get(context.Background(), "ping", nil)
	require.NoError(t, err)
	assert.Equal(t, "pong", resp.Data)
}

func TestClient_PathRequired(t *testing.T) {
	t.Parallel()

	fake := newFakeMarketplace(t)
	cli, _ := newTestClient(t, fake, nil)

	_, err := cli.Do(context.Background(), &sdk.EndpointRequest{Method: http.MethodGet, Path: " "})
	require.ErrorIs(t, err, sdk.ErrPathRequired)
}
