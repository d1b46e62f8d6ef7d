package scratch

import (
	"context"
	"time"
)

// UsersClient vends users through the client's identity cache.
type UsersClient interface {
	// Get returns the user named username. Usernames are case insensitive:
	// "Alice" and "alice" yield the same instance.
	Get(username string) (*User, error)
	// GetWithSeed is Get with fields already known about the user.
	GetWithSeed(username string, seed Record) (*User, error)
	// Fetch is Get followed by a hydration of the user.
	Fetch(ctx context.Context, username string) (*User, error)
}

// ProjectsClient vends projects through the client's identity cache.
type ProjectsClient interface {
	Get(id int64) (*Project, error)
	GetWithSeed(id int64, seed Record) (*Project, error)
	// GetByString parses a textual project ID.
	GetByString(id string) (*Project, error)
	Fetch(ctx context.Context, id int64) (*Project, error)
}

// Client is the entry point to the Scratch API.
type Client interface {
	Users() UsersClient
	Projects() ProjectsClient
	// Session returns the login session the client was built with, or nil.
	Session() *Session
	// Transport returns the transport used by every document and stream.
	Transport() Transport
	// Metrics returns request counters, or nil when metrics are disabled.
	Metrics() *MetricsCollector
	// HydrateAll hydrates documents with bounded concurrency.
	HydrateAll(ctx context.Context, docs []*Document) []BatchResult
	// Close releases connections held by the response cache.
	Close() error
}

// Session is a login session to the Scratch website.
type Session struct {
	// Username of the logged in user.
	Username string `json:"username"`
	// SessionID is the session cookie, used for authorization by some
	// website endpoints.
	SessionID string `json:"sessionID"`
	// CSRFToken is sent with write requests to the website.
	CSRFToken string `json:"csrfToken"`
	// APIToken authorizes requests to the API. It is refreshed whenever a
	// session is restored.
	APIToken string `json:"apiToken,omitempty"`
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building a scratch.Client.
//
// # Sessions
//
// Session is optional. Public documents and collections can be read without
// one. When set, its API token is sent as the X-Token header and its session
// ID as the scratchsessionsid cookie.
//
// # Retries
//
// The transport does not retry by default. Setting RetryMax enables retries
// of connection errors, 429 and 5xx responses with exponential backoff
// between RetryWaitMin and RetryWaitMax.
type Config struct {
	// APIEndpoint: base URL of the API. scratchclient.New normalizes this
	// value by trimming a trailing slash and adding "https://" if no scheme
	// is present. Defaults to https://api.scratch.mit.edu.
	APIEndpoint string
	// SiteEndpoint: base URL of the website, used for login and token
	// refresh. Defaults to https://scratch.mit.edu.
	SiteEndpoint string
	// Session: optional login session.
	Session *Session

	// PageSize: page size of collection streams. Defaults to 40.
	PageSize int
	// SeedPolicy: what the identity caches do with seed fields on a hit.
	SeedPolicy SeedPolicy
	// BatchConcurrency: maximum parallel hydrations of HydrateAll.
	BatchConcurrency int

	// HTTPTimeout: timeout of a single HTTP request.
	HTTPTimeout time.Duration
	// RetryMax: maximum number of retries. 0 disables retries.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug: enables HTTP request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Headers: extra headers sent with every API request.
	Headers map[string]string
	// Cache: optional response cache for GET requests.
	Cache *CacheConfig
	// EnableMetrics: collects per-endpoint request metrics.
	EnableMetrics bool
}
