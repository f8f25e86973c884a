package sdkclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/marketplace-sdk/internal/client"
	"github.com/fivetwenty-io/marketplace-sdk/internal/constants"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
	"github.com/fivetwenty-io/marketplace-sdk/pkg/types"
)

// New creates a new marketplace API client. The config is copied, so the
// caller's value is never modified.
func New(ctx context.Context, config *sdk.Config) (sdk.Client, error) {
	if config == nil {
		return nil, sdk.ErrConfigRequired
	}

	normalized, err := normalizeConfig(config)
	if err != nil {
		return nil, err
	}

	err = validateConfig(normalized)
	if err != nil {
		return nil, err
	}

	// Use the internal client implementation
	cli, err := client.New(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// normalizeConfig applies defaults and cleans up the base URL.
func normalizeConfig(config *sdk.Config) (*sdk.Config, error) {
	normalized := *config

	baseURL := strings.TrimSpace(normalized.BaseURL)
	if baseURL == "" {
		baseURL = constants.DefaultBaseURL
	}

	baseURL = strings.TrimSuffix(baseURL, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", sdk.ErrInvalidBaseURL, config.BaseURL)
	}

	normalized.BaseURL = baseURL

	normalized.Version = strings.Trim(normalized.Version, "/")
	if normalized.Version == "" {
		normalized.Version = constants.DefaultAPIVersion
	}

	if normalized.WireFormat == "" {
		normalized.WireFormat = sdk.WireFormatTransit
	}

	if normalized.UserAgent == "" {
		normalized.UserAgent = constants.DefaultUserAgent
	}

	if normalized.HTTPTimeout <= 0 {
		normalized.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	return &normalized, nil
}

func validateConfig(config *sdk.Config) error {
	if config.ClientID == "" {
		return sdk.ErrClientIDRequired
	}

	if config.TokenStore == nil {
		return sdk.ErrTokenStoreRequired
	}

	if !config.WireFormat.Valid() {
		return fmt.Errorf("%w: %q", sdk.ErrInvalidWireFormat, config.WireFormat)
	}

	if config.IntegrationAPI && config.ClientSecret == "" {
		return fmt.Errorf("integration API: %w", sdk.ErrClientSecretRequired)
	}

	err := types.ValidateHandlers(config.TypeHandlers)
	if err != nil {
		return fmt.Errorf("validating type handlers: %w", err)
	}

	return nil
}

// NewWithClientID creates a client that keeps its token in memory.
func NewWithClientID(ctx context.Context, clientID string) (sdk.Client, error) {
	return New(ctx, &sdk.Config{
		ClientID:   clientID,
		TokenStore: tokenstore.NewMemoryStore(),
	})
}

// NewWithClientCredentials creates a client for trusted operations.
func NewWithClientCredentials(ctx context.Context, clientID, clientSecret string) (sdk.Client, error) {
	return New(ctx, &sdk.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenStore:   tokenstore.NewMemoryStore(),
	})
}

// NewIntegration creates a client for the integration API. Its anonymous
// token is an integration token.
func NewIntegration(ctx context.Context, clientID, clientSecret string) (sdk.Client, error) {
	return New(ctx, &sdk.Config{
		ClientID:       clientID,
		ClientSecret:   clientSecret,
		TokenStore:     tokenstore.NewMemoryStore(),
		IntegrationAPI: true,
	})
}
