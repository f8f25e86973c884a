package constants

import "errors"

// Configuration errors.
var (
	ErrClientIDRequired     = errors.New("client ID is required, set client_id or MKT_CLIENT_ID")
	ErrClientSecretRequired = errors.New("client secret is required for this operation")
	ErrUnknownConfigKey     = errors.New("unknown configuration key")
	ErrUnknownStoreType     = errors.New("unknown token store type")
	ErrUnknownWireFormat    = errors.New("unknown wire format")
)

// Authentication errors.
var (
	ErrNotAuthenticated  = errors.New("not authenticated, use 'mkt login' first")
	ErrNoRefreshToken    = errors.New("no refresh token available, please run 'mkt login' again")
	ErrUsernameRequired  = errors.New("username is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrIdpParamsRequired = errors.New("idpId, idpClientId and idpToken are required")
)

// Request errors.
var (
	ErrInvalidParam   = errors.New("invalid parameter, expected key=value")
	ErrPathRequired   = errors.New("endpoint path is required")
	ErrInvalidPayload = errors.New("invalid JSON payload")
)
