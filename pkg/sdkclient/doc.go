// Package sdkclient provides the primary entry point for constructing a
// marketplace API client that implements the sdk.Client interface.
//
// It normalizes and validates an sdk.Config, then wires the token store,
// type handlers, wire codec and HTTP transport together. Most applications
// import sdkclient to build a client and then use the returned sdk.Client.
//
// Quick start
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
//
//	  // Minimal: a client ID and an in-memory token store.
//	  cli, err := sdkclient.NewWithClientID(ctx, "client-id")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or with a persistent store and JSON bodies.
//	  cli, err = sdkclient.New(ctx, &sdk.Config{
//	    ClientID:   "client-id",
//	    TokenStore: tokenstore.NewFileStore("/tmp/marketplace-token.json"),
//	    WireFormat: sdk.WireFormatJSON,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  // Anonymous calls fetch a public-read token on first use.
//	  resp, err := cli.Get(ctx, "listings/query", map[string]any{"perPage": 10})
//	  if err != nil { log.Fatal(err) }
//	  _ = resp.Data
//
//	  // Log in to act as a user.
//	  _, err = cli.Login(ctx, "joe@example.com", "secret")
//	  if err != nil { log.Fatal(err) }
//	}
package sdkclient
