package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Marketplace API defaults.
const (
	// DefaultBaseURL is the public marketplace API host.
	DefaultBaseURL = "https://flex-api.sharetribe.com"

	// DefaultAPIVersion is the API version prefix.
	DefaultAPIVersion = "v1"

	// DefaultUserAgent identifies the SDK.
	DefaultUserAgent = "marketplace-sdk-go/1.0.0"
)

// API path segments. Endpoint paths are relative to /<version>/api unless
// they start with /<version>/.
const (
	// APIPathPrefix is appended to the version for endpoint calls.
	APIPathPrefix = "api"

	// AuthPathPrefix is appended to the version for auth calls.
	AuthPathPrefix = "auth"

	// PathToken is the token endpoint, relative to the auth prefix.
	PathToken = "token"

	// PathAuthWithIdp exchanges an identity provider token.
	PathAuthWithIdp = "auth_with_idp"

	// PathRevoke revokes a refresh token.
	PathRevoke = "revoke"
)

// Content types.
const (
	// ContentTypeJSON is plain JSON.
	ContentTypeJSON = "application/json"

	// ContentTypeTransit is Transit JSON.
	ContentTypeTransit = "application/transit+json"

	// ContentTypeForm is used for every grant.
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Header names.
const (
	// HeaderAuthorization carries the bearer credential.
	HeaderAuthorization = "Authorization"

	// HeaderContentType is the request body type.
	HeaderContentType = "Content-Type"

	// HeaderAccept is the preferred response type.
	HeaderAccept = "Accept"

	// HeaderUserAgent identifies the client.
	HeaderUserAgent = "User-Agent"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
const DefaultHTTPTimeout = 30 * time.Second

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// None is used when no value is present.
	None = "none"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// TokenDisplayLength is how many characters of a token are shown.
	TokenDisplayLength = 12

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"
)

// Wire formats.
const (
	// WireFormatJSON sends and accepts plain JSON.
	WireFormatJSON = "json"

	// WireFormatTransit sends and accepts Transit JSON.
	WireFormatTransit = "transit"
)
