// Package sdk defines the public surface of the marketplace API client:
// configuration, the Client interfaces, request and response types, API
// errors, interceptors, metrics and logging.
//
// # Overview
//
// A concrete client is built by the sdkclient package, which validates a
// Config and wires the token store, wire codec and HTTP transport. Every
// endpoint call passes through one pipeline that attaches a bearer token
// (fetching an anonymous one when the store is empty), encodes the body as
// Transit or JSON, decodes the response into rich SDK types, and refreshes
// and replays a request once when the token has expired.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/marketplace-sdk/pkg/sdk"
//	  "github.com/fivetwenty-io/marketplace-sdk/pkg/sdkclient"
//	  "github.com/fivetwenty-io/marketplace-sdk/pkg/tokenstore"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := sdkclient.New(ctx, &sdk.Config{
//	    ClientID:   "my-client-id",
//	    TokenStore: tokenstore.NewMemoryStore(),
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  res, err := cli.Get(ctx, "listings/query", map[string]any{"perPage": 5})
//	  if err != nil { log.Fatal(err) }
//	  _ = res.Data
//	}
//
// # Errors
//
// Non-2xx responses are returned as *APIError. IsUnauthorized, IsForbidden,
// IsNotFound and StatusCode inspect any error chain.
//
// # Interceptors and metrics
//
// InterceptorChain runs request interceptors after the credential is attached
// and response interceptors after each exchange. RequestIDInterceptor tags
// requests with a ULID. Metrics exports prometheus counters for requests,
// token grants and refreshes.
package sdk
