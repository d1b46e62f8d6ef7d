// Package scratchclient provides the primary entry point for constructing a
// Scratch API client that implements the scratch.Client interface.
//
// It layers configuration, HTTP transport, login sessions and the optional
// response cache on top of the documents, streams and identity caches
// defined in the scratch package.
//
// Quick start
//
//	import (
//	  "context"
//	  "fmt"
//	  "log"
//
//	  "github.com/fivetwenty-io/scratch-client/pkg/scratchclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//
//	  // Anonymous client against https://api.scratch.mit.edu.
//	  cli, err := scratchclient.NewWithEndpoint(ctx, "")
//	  if err != nil { log.Fatal(err) }
//	  defer cli.Close()
//
//	  user, err := cli.Users().Get("griffpatch")
//	  if err != nil { log.Fatal(err) }
//
//	  // Accessors fetch the user document on first use.
//	  bio, err := user.Bio(ctx)
//	  if err != nil { log.Fatal(err) }
//	  fmt.Println(bio)
//
//	  // Collections are lazy paginated streams.
//	  followers, err := user.Followers(ctx).Take(10)
//	  if err != nil { log.Fatal(err) }
//	  _ = followers
//	}
//
// # Sessions
//
// LoginOrRestore reads a saved session from a JSON file (".scratchSession" by
// default) and refreshes its API token. If the file does not exist it prompts
// for a username and password on the terminal, logs in, and writes the file.
//
// # Helpers
//
// NewWithEndpoint, NewWithSession and Login wrap New with the matching
// configuration.
package scratchclient
