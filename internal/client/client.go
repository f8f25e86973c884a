// Package client implements the marketplace transport pipeline: credential
// attachment, body marshalling, response decoding, token persistence and
// the single refresh-and-replay on an expired token.
package client

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	mkthttp "github.com/fivetwenty-io/marketplace-sdk/internal/http"
	"github.com/fivetwenty-io/marketplace-sdk/internal/marshal"
	"github.com/fivetwenty-io/marketplace-sdk/internal/transit"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
)

// Client implements sdk.Client.
type Client struct {
	httpClient *mkthttp.Client
	store      tokenstore.Store
	logger     sdk.Logger
	metrics    *sdk.Metrics
	chain      *sdk.InterceptorChain

	clientID       string
	clientSecret   string
	integrationAPI bool
	version        string

	json    *jsonCodec
	transit *transitCodec
	wire    codec

	// trusted holds resolved paths that need a trusted token.
	trusted sync.Map

	// flights coalesces concurrent anonymous fetches and refreshes.
	flights singleflight.Group
}

var _ sdk.Client = (*Client)(nil)

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *sdk.Config) []mkthttp.Option {
	var httpOpts []mkthttp.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, mkthttp.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, mkthttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, mkthttp.WithUserAgent(config.UserAgent))
	}

	if config.HTTPClient != nil {
		httpOpts = append(httpOpts, mkthttp.WithHTTPClient(config.HTTPClient))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, mkthttp.WithTimeout(config.HTTPTimeout))
	}

	return httpOpts
}

// New creates a client from a normalized config. Use sdkclient.New to
// apply defaults and validation.
func New(ctx context.Context, config *sdk.Config) (*Client, error) {
	if config == nil {
		return nil, sdk.ErrConfigRequired
	}

	if config.ClientID == "" {
		return nil, sdk.ErrClientIDRequired
	}

	if config.TokenStore == nil {
		return nil, sdk.ErrTokenStoreRequired
	}

	if !config.WireFormat.Valid() {
		return nil, fmt.Errorf("%w: %q", sdk.ErrInvalidWireFormat, config.WireFormat)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	version := strings.Trim(config.Version, "/")
	if version == "" {
		version = constants.DefaultAPIVersion
	}

	var logger sdk.Logger = sdk.NopLogger{}
	if config.Logger != nil {
		logger = config.Logger
	}

	chain := sdk.NewInterceptorChain()
	if config.Metrics != nil {
		chain.AddRequestInterceptor(sdk.MetricsRequestInterceptor(config.Metrics))
		chain.AddResponseInterceptor(sdk.MetricsResponseInterceptor(config.Metrics))
	}

	chain.Merge(config.Interceptors)

	marshaller := marshal.New(config.TypeHandlers)

	client := &Client{
		httpClient:     mkthttp.NewClient(baseURL, createHTTPClientOptions(config)...),
		store:          config.TokenStore,
		logger:         logger,
		metrics:        config.Metrics,
		chain:          chain,
		clientID:       config.ClientID,
		clientSecret:   config.ClientSecret,
		integrationAPI: config.IntegrationAPI,
		version:        version,
		json:           &jsonCodec{marshaller: marshaller},
		transit: &transitCodec{
			codec:    transit.NewCodec(config.TypeHandlers, config.TransitVerbose),
			handlers: marshaller.Handlers(),
		},
	}

	client.wire = client.transit
	if config.WireFormat == sdk.WireFormatJSON {
		client.wire = client.json
	}

	for _, route := range config.TrustedRoutes {
		client.trusted.Store(client.resolvePath(route), true)
	}

	return client, nil
}

// resolvePath maps an endpoint path to a full request path. Paths already
// under /<version>/ are kept.
func (c *Client) resolvePath(path string) string {
	if strings.HasPrefix(path, "/"+c.version+"/") {
		return path
	}

	return "/" + c.version + "/" + constants.APIPathPrefix + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) authPath(endpoint string) string {
	return "/" + c.version + "/" + constants.AuthPathPrefix + "/" + endpoint
}

func (c *Client) isTrusted(path string) bool {
	_, ok := c.trusted.Load(path)

	return ok
}

// Do sends an endpoint request through the pipeline.
func (c *Client) Do(ctx context.Context, req *sdk.EndpointRequest) (*sdk.Response, error) {
	if req == nil || strings.TrimSpace(req.Path) == "" {
		return nil, sdk.ErrPathRequired
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	path := c.resolvePath(req.Path)
	if req.Trusted {
		c.trusted.Store(path, true)
	}

	call := &call{
		method:  method,
		path:    path,
		mode:    authRequired,
		headers: map[string]string{constants.HeaderAccept: c.wire.ContentType()},
	}

	if method == http.MethodGet {
		call.query = marshal.EncodeQuery(req.Params)
	} else {
		query, body := marshal.HoistQuery(req.Params)

		encoded, err := c.wire.Encode(body)
		if err != nil {
			return nil, err
		}

		call.query = query
		call.body = encoded
		call.headers[constants.HeaderContentType] = c.wire.ContentType()
	}

	for key, values := range req.Query {
		for _, value := range values {
			call.query.Add(key, value)
		}
	}

	for key, value := range req.Headers {
		call.headers[key] = value
	}

	return c.send(ctx, call)
}

// Get performs a GET endpoint request.
func (c *Client) Get(ctx context.Context, path string, params map[string]any) (*sdk.Response, error) {
	return c.Do(ctx, &sdk.EndpointRequest{Method: http.MethodGet, Path: path, Params: params})
}

// Post performs a POST endpoint request.
func (c *Client) Post(ctx context.Context, path string, params map[string]any) (*sdk.Response, error) {
	return c.Do(ctx, &sdk.EndpointRequest{Method: http.MethodPost, Path: path, Params: params})
}
