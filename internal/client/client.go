package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/scratch-client/internal/auth"
	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/internal/http"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// Client implements the scratch.Client interface. It owns one identity cache
// per entity kind and acts as the scratch.Directory of every entity it vends.
type Client struct {
	transport    scratch.Transport
	tokenManager *auth.SessionTokenManager
	metrics      *scratch.MetricsCollector
	cache        scratch.Cache

	pageSize         int
	batchConcurrency int

	userCache    *scratch.IdentityCache[string, *scratch.User]
	projectCache *scratch.IdentityCache[int64, *scratch.Project]

	users    *usersClient
	projects *projectsClient
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *scratch.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// createTokenManager returns a token manager for the configured session, or
// nil for anonymous clients.
func createTokenManager(config *scratch.Config) *auth.SessionTokenManager {
	if config.Session == nil {
		return nil
	}

	authenticator := auth.NewAuthenticator(config.SiteEndpoint, config.Logger, createHTTPClientOptions(config)...)

	return auth.NewSessionTokenManager(config.Session, authenticator, nil, config.Logger)
}

// New creates a client talking HTTP to config.APIEndpoint.
func New(ctx context.Context, config *scratch.Config) (*Client, error) {
	if config == nil {
		return nil, scratch.ErrConfigRequired
	}

	if config.APIEndpoint == "" {
		return nil, scratch.ErrAPIEndpointRequired
	}

	tokenManager := createTokenManager(config)
	httpOpts := createHTTPClientOptions(config)

	var cache scratch.Cache

	if config.Cache != nil && config.Cache.Type != scratch.CacheTypeNone {
		var err error

		cache, err = scratch.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to create response cache: %w", err)
		}

		httpOpts = append(httpOpts, http.WithCache(scratch.NewCacheManager(cache, config.Cache.Options)))
	}

	// A nil *SessionTokenManager must not become a non-nil interface.
	var tokens http.TokenManager
	if tokenManager != nil {
		tokens = tokenManager
	}

	httpClient := http.NewClient(config.APIEndpoint, tokens, httpOpts...)

	client := newClient(config, &httpTransport{client: httpClient}, tokenManager)
	client.cache = cache

	// Sessions restored without an API token get one before first use.
	if tokenManager != nil && config.Session.APIToken == "" {
		err := tokenManager.RefreshToken(ctx)
		if err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("failed to fetch API token: %w", err)
		}
	}

	if config.Logger != nil {
		config.Logger.Debug("Created Scratch client", map[string]interface{}{
			"api_endpoint":  config.APIEndpoint,
			"authenticated": tokenManager != nil,
			"cache":         cache != nil,
		})
	}

	return client, nil
}

// NewWithTransport creates a client on top of a custom transport. The
// session, if any, is attached by the interceptor chain only.
func NewWithTransport(config *scratch.Config, transport scratch.Transport) (*Client, error) {
	if config == nil {
		return nil, scratch.ErrConfigRequired
	}

	if transport == nil {
		return nil, scratch.ErrTransportRequired
	}

	var tokenManager *auth.SessionTokenManager
	if config.Session != nil {
		tokenManager = auth.NewSessionTokenManager(config.Session, nil, nil, config.Logger)
	}

	return newClient(config, transport, tokenManager), nil
}

func newClient(config *scratch.Config, transport scratch.Transport, tokenManager *auth.SessionTokenManager) *Client {
	client := &Client{
		tokenManager:     tokenManager,
		pageSize:         config.PageSize,
		batchConcurrency: config.BatchConcurrency,
	}

	if client.pageSize <= 0 {
		client.pageSize = constants.DefaultPageSize
	}

	client.pageSize = min(client.pageSize, constants.MaxPageSize)

	if client.batchConcurrency <= 0 {
		client.batchConcurrency = constants.DefaultConcurrencyLimit
	}

	chain := scratch.NewInterceptorChain()
	chain.AddRequestInterceptor(scratch.RequestIDInterceptor())

	if len(config.Headers) > 0 {
		chain.AddRequestInterceptor(scratch.HeaderInterceptor(config.Headers))
	}

	if tokenManager != nil {
		chain.AddRequestInterceptor(scratch.SessionInterceptor(tokenManager.Session))
	}

	if config.Logger != nil {
		chain.AddRequestInterceptor(scratch.LoggingInterceptor(config.Logger))
		chain.AddResponseInterceptor(scratch.LoggingResponseInterceptor(config.Logger))
	}

	if config.EnableMetrics {
		client.metrics = scratch.NewMetricsCollector()
		chain.AddRequestInterceptor(scratch.MetricsRequestInterceptor(client.metrics))
		chain.AddResponseInterceptor(scratch.MetricsResponseInterceptor(client.metrics))
	}

	client.transport = chain.Wrap(transport)

	client.userCache = scratch.NewIdentityCache[string, *scratch.User](
		scratch.FactoryFunc[string, *scratch.User](func(username string, seed scratch.Record) *scratch.User {
			return scratch.NewUser(client.transport, username, seed, client.entityOptions()...)
		}),
		scratch.WithKeyNormalizer(scratch.NormalizeUsername),
		scratch.WithSeedPolicy[string](config.SeedPolicy),
	)

	client.projectCache = scratch.NewIdentityCache[int64, *scratch.Project](
		scratch.FactoryFunc[int64, *scratch.Project](func(id int64, seed scratch.Record) *scratch.Project {
			return scratch.NewProject(client.transport, id, seed, client.entityOptions()...)
		}),
		scratch.WithSeedPolicy[int64](config.SeedPolicy),
	)

	client.users = &usersClient{client: client}
	client.projects = &projectsClient{client: client}

	return client
}

func (c *Client) entityOptions() []scratch.EntityOption {
	return []scratch.EntityOption{scratch.WithDirectory(c), scratch.WithEntityPageSize(c.pageSize)}
}

// User implements scratch.Directory.
func (c *Client) User(username string, seed scratch.Record) *scratch.User {
	return c.userCache.GetOrCreate(username, seed)
}

// Project implements scratch.Directory.
func (c *Client) Project(id int64, seed scratch.Record) *scratch.Project {
	return c.projectCache.GetOrCreate(id, seed)
}

// Users implements scratch.Client.Users.
func (c *Client) Users() scratch.UsersClient {
	return c.users
}

// Projects implements scratch.Client.Projects.
func (c *Client) Projects() scratch.ProjectsClient {
	return c.projects
}

// Session implements scratch.Client.Session.
func (c *Client) Session() *scratch.Session {
	if c.tokenManager == nil {
		return nil
	}

	return c.tokenManager.Session()
}

// Transport implements scratch.Client.Transport.
func (c *Client) Transport() scratch.Transport {
	return c.transport
}

// Metrics implements scratch.Client.Metrics.
func (c *Client) Metrics() *scratch.MetricsCollector {
	return c.metrics
}

// HydrateAll implements scratch.Client.HydrateAll.
func (c *Client) HydrateAll(ctx context.Context, docs []*scratch.Document) []scratch.BatchResult {
	return scratch.HydrateAll(ctx, docs, c.batchConcurrency)
}

// CachedUsers returns the number of distinct users vended so far.
func (c *Client) CachedUsers() int {
	return c.userCache.Len()
}

// CachedProjects returns the number of distinct projects vended so far.
func (c *Client) CachedProjects() int {
	return c.projectCache.Len()
}

// Close releases the response cache connection, if any.
func (c *Client) Close() error {
	if c.cache == nil {
		return nil
	}

	err := scratch.CloseCache(c.cache)
	if err != nil {
		return fmt.Errorf("failed to close response cache: %w", err)
	}

	return nil
}

type usersClient struct {
	client *Client
}

func (u *usersClient) Get(username string) (*scratch.User, error) {
	return u.GetWithSeed(username, scratch.Record{})
}

func (u *usersClient) GetWithSeed(username string, seed scratch.Record) (*scratch.User, error) {
	if scratch.NormalizeUsername(username) == "" {
		return nil, fmt.Errorf("%w: %q", scratch.ErrInvalidUsername, username)
	}

	return u.client.User(username, seed), nil
}

func (u *usersClient) Fetch(ctx context.Context, username string) (*scratch.User, error) {
	user, err := u.Get(username)
	if err != nil {
		return nil, err
	}

	err = user.Hydrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching user %s: %w", username, err)
	}

	return user, nil
}

type projectsClient struct {
	client *Client
}

func (p *projectsClient) Get(id int64) (*scratch.Project, error) {
	return p.GetWithSeed(id, scratch.Record{})
}

func (p *projectsClient) GetWithSeed(id int64, seed scratch.Record) (*scratch.Project, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: %d", scratch.ErrInvalidProjectID, id)
	}

	return p.client.Project(id, seed), nil
}

func (p *projectsClient) GetByString(id string) (*scratch.Project, error) {
	parsed, err := scratch.ParseProjectID(id)
	if err != nil {
		return nil, err
	}

	return p.Get(parsed)
}

func (p *projectsClient) Fetch(ctx context.Context, id int64) (*scratch.Project, error) {
	project, err := p.Get(id)
	if err != nil {
		return nil, err
	}

	err = project.Hydrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching project %d: %w", id, err)
	}

	return project, nil
}
