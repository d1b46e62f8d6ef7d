package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and session files.
	ConfigFilePerm = 0600
)

// Remote service endpoints.
const (
	// DefaultAPIEndpoint is the base URL of the read/write JSON API.
	DefaultAPIEndpoint = "https://api.scratch.mit.edu"

	// DefaultSiteEndpoint is the base URL of the website that performs login.
	DefaultSiteEndpoint = "https://scratch.mit.edu"

	// DefaultSessionFile is the session file name used when none is configured.
	DefaultSessionFile = ".scratchSession"
)

// Login handshake values.
const (
	// CSRFToken is the fixed anti-forgery token accepted by the login endpoint.
	CSRFToken = "a"

	// SessionCookieName is the cookie carrying the session ID.
	SessionCookieName = "scratchsessionsid"

	// CSRFCookieName is the cookie carrying the anti-forgery token.
	CSRFCookieName = "scratchcsrftoken"

	// TokenHeader carries the API token on API requests.
	TokenHeader = "X-Token"

	// RequestIDHeader carries a per-request correlation ID.
	RequestIDHeader = "X-Request-ID"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are off unless RetryMax is configured.
const (
	// DefaultRetryWaitMin is the minimum wait between configured retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit limits concurrent hydrations in a batch.
	DefaultConcurrencyLimit = 5
)

// Pagination.
const (
	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 40

	// MaxPageSize is the largest limit the API honors.
	MaxPageSize = 40
)

// Response cache.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultCacheCleanupInterval is how often expired memory entries are swept.
	DefaultCacheCleanupInterval = time.Minute

	// DefaultNATSBucket is the JetStream key-value bucket used for caching.
	DefaultNATSBucket = "scratch_responses"

	// DefaultRedisPrefix namespaces response cache keys in Redis.
	DefaultRedisPrefix = "scratch:responses:"

	// RedisScanCount is the SCAN batch hint used when clearing the cache.
	RedisScanCount = 100
)

// Display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// DefaultListLimit caps the number of streamed items the CLI prints.
	DefaultListLimit = 20

	// DateFormat is used when printing dates.
	DateFormat = "2006-01-02 15:04:05"
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
