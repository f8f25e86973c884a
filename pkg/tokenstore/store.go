// Package tokenstore holds the persisted credential shared by every request
// of an SDK instance.
//
// A Store is a single-slot container: GetToken returns the current token or
// nil, SetToken replaces it and RemoveToken clears it. A persisted value that
// cannot be decoded is discarded and reported as absent, so a corrupt cookie
// or file never blocks the client from fetching a fresh token.
package tokenstore

import "context"

// Store persists the current token.
type Store interface {
	GetToken(ctx context.Context) (*Token, error)
	SetToken(ctx context.Context, token *Token) error
	RemoveToken(ctx context.Context) error
}

// CookieName returns the cookie and key name used for a client.
func CookieName(clientID string) string {
	return "st-" + clientID + "-token"
}
