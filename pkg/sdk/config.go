package sdk

import (
	"net/http"
	"time"

	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// WireFormat selects the body encoding used for endpoint calls.
type WireFormat string

const (
	// WireFormatTransit sends and accepts application/transit+json.
	WireFormatTransit WireFormat = "transit"

	// WireFormatJSON sends and accepts application/json.
	WireFormatJSON WireFormat = "json"
)

// Valid reports whether f names a supported format. The empty value is
// valid and means transit.
func (f WireFormat) Valid() bool {
	switch f {
	case "", WireFormatTransit, WireFormatJSON:
		return true
	default:
		return false
	}
}

// Config represents client configuration for building a Client with
// sdkclient.New. It is read once; changing it afterwards has no effect.
//
// # Credentials
//
// ClientID is always required. Requests made before any login carry an
// anonymous token obtained with the client_credentials grant and the
// public-read scope, or the integ scope when IntegrationAPI is set. Login,
// LoginWithIdp and LoginAs replace it with a user token. ClientSecret is only
// needed for trusted operations (ExchangeToken, integration access, and
// refreshing trusted tokens).
//
// # Token storage
//
// TokenStore is required. Use tokenstore.NewMemoryStore for a single process,
// a file, badger or NATS store to share tokens between runs, or the cookie
// stores in web applications.
type Config struct {
	// ClientID is the marketplace API client ID.
	ClientID string

	// ClientSecret is the API client secret for trusted operations.
	ClientSecret string

	// BaseURL is the API host. Defaults to https://flex-api.sharetribe.com.
	BaseURL string

	// Version is the API version path segment. Defaults to v1.
	Version string

	// TokenStore persists the current token.
	TokenStore tokenstore.Store

	// TypeHandlers convert between SDK rich types and application types.
	TypeHandlers []types.TypeHandler

	// WireFormat selects transit (default) or json bodies.
	WireFormat WireFormat

	// TransitVerbose writes verbose transit: JSON objects for maps, no
	// cache, and RFC 3339 timestamps.
	TransitVerbose bool

	// IntegrationAPI makes anonymous token acquisition use the integration
	// client credentials grant.
	IntegrationAPI bool

	// TrustedRoutes lists endpoint paths that need a trusted token. A 403 on
	// one of them triggers a refresh with the client secret.
	TrustedRoutes []string

	// Logger receives debug output. Nil discards logs.
	Logger Logger

	// Debug enables request and response logging.
	Debug bool

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// HTTPTimeout bounds each HTTP exchange. Defaults to 30s.
	HTTPTimeout time.Duration

	// HTTPClient replaces the underlying HTTP client.
	HTTPClient *http.Client

	// Metrics records request and token counters when set.
	Metrics *Metrics

	// Interceptors run around every HTTP exchange.
	Interceptors *InterceptorChain
}
