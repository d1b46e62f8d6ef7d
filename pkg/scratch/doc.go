// Package scratch provides types, interfaces, and helpers for working with the
// Scratch website API.
//
// # Overview
//
// Users and projects are lazily hydrated documents. A document may start with
// some fields already known, typically from a listing it was found in, and
// fetches the full record from the API only the first time a field it lacks
// is requested. A concrete client is provided by the scratchclient package,
// which wires configuration, transport, session and the identity caches.
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/scratch-client/pkg/scratch"
//	  "github.com/fivetwenty-io/scratch-client/pkg/scratchclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := scratchclient.New(ctx, &scratch.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  user, err := cli.Users().Get("griffpatch")
//	  if err != nil { log.Fatal(err) }
//
//	  bio, err := user.Bio(ctx)
//	  if err != nil { log.Fatal(err) }
//	  _ = bio
//	}
//
// # Identity
//
// The client keeps one instance per user and per project for its lifetime.
// Usernames are case insensitive: Users().Get("Alice") and Users().Get("alice")
// return the same *User.
//
// # Streams
//
// Collections such as followers or shared projects are exposed as a Stream,
// a lazy, forward-only sequence that fetches one page at a time and ends when
// the API returns an empty page:
//
//	followers := user.Followers(ctx)
//	for follower, err := range followers.Seq() {
//	  if err != nil { break }
//	  _ = follower
//	}
//
// # Errors
//
// Failed fetches wrap ErrFetchFailed; non-success responses carry an
// APIError. IsNotFound, IsUnauthorized, and IsForbidden branch on common
// cases. A failed hydration is not remembered: the next lookup retries.
//
// # Interceptors and caching
//
// Requests pass through an InterceptorChain (logging, session headers,
// request IDs, metrics). GET responses can be cached in memory, in a NATS
// JetStream key-value bucket or in Redis; only successful responses are
// stored.
package scratch
