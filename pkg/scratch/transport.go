package scratch

import (
	"context"
	"net/http"
	"net/url"
)

// Request is a transport-neutral HTTP request. Path is relative to the
// transport's base URL.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// Response is a transport-neutral HTTP response with the raw JSON body.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Error      error
}

// Transport performs requests against the remote service. Implementations
// return an error for anything other than a decodable 2xx response; documents
// and streams never interpret status codes themselves.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f(ctx, req).
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// get issues a GET for path with the given query.
// MetadataNoCache marks a request whose response must come from the server,
// not from a response cache.
const MetadataNoCache = "no_cache"

// NoCache reports whether req asks to bypass response caches.
func (r *Request) NoCache() bool {
	noCache, _ := r.Metadata[MetadataNoCache].(bool)

	return noCache
}

func get(ctx context.Context, transport Transport, path string, query url.Values) (*Response, error) {
	return transport.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}
