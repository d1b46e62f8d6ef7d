package client_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/fivetwenty-io/scratch-client/internal/client"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

func newTestClient(t *testing.T, api *fakeAPI, mutate func(*scratch.Config)) *Client {
	t.Helper()

	config := &scratch.Config{APIEndpoint: api.server.URL, SiteEndpoint: api.server.URL}
	if mutate != nil {
		mutate(config)
	}

	client, err := New(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	return client
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), nil)
		require.ErrorIs(t, err, scratch.ErrConfigRequired)
	})

	t.Run("requires API endpoint", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &scratch.Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API endpoint is required")
	})

	t.Run("creates anonymous client", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &scratch.Config{APIEndpoint: "https://api.example.com"})
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.Nil(t, client.Session())
		assert.Nil(t, client.Metrics())
	})

	t.Run("rejects a broken cache config", func(t *testing.T) {
		t.Parallel()

		_, err := New(context.Background(), &scratch.Config{
			APIEndpoint: "https://api.example.com",
			Cache:       &scratch.CacheConfig{Type: scratch.CacheTypeRedis},
		})
		require.ErrorIs(t, err, scratch.ErrRedisConfigRequired)
	})

	t.Run("fetches a missing API token", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		client := newTestClient(t, api, func(config *scratch.Config) {
			config.Session = &scratch.Session{Username: "griffpatch", SessionID: "sid", CSRFToken: "a"}
		})

		require.NotNil(t, client.Session())
		assert.Equal(t, "fresh-token", client.Session().APIToken)
		assert.Equal(t, 1, api.hitCount("/session"))
	})

	t.Run("keeps an existing API token", func(t *testing.T) {
		t.Parallel()

		api := newFakeAPI(t)
		session := &scratch.Session{Username: "griffpatch", SessionID: "sid", CSRFToken: "a", APIToken: "tok"}
		client := newTestClient(t, api, func(config *scratch.Config) { config.Session = session })

		assert.Equal(t, "tok", client.Session().APIToken)
		assert.Equal(t, 0, api.hitCount("/session"))
	})
}

func TestClient_UserIdentity(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newFakeAPI(t), nil)

	first, err := client.Users().Get("Griffpatch")
	require.NoError(t, err)

	second, err := client.Users().Get("  griffpatch ")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, client.CachedUsers())

	_, err = client.Users().Get("   ")
	require.ErrorIs(t, err, scratch.ErrInvalidUsername)
}

func TestClient_ProjectIdentity(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newFakeAPI(t), nil)

	first, err := client.Projects().Get(10128407)
	require.NoError(t, err)

	second, err := client.Projects().GetByString(" 10128407 ")
	require.NoError(t, err)

	assert.Same(t, first, second)

	_, err = client.Projects().Get(0)
	require.ErrorIs(t, err, scratch.ErrInvalidProjectID)

	_, err = client.Projects().GetByString("abc")
	require.ErrorIs(t, err, scratch.ErrInvalidProjectID)
	assert.Equal(t, 1, client.CachedProjects())
}

func TestClient_FetchUser(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	user, err := client.Users().Fetch(ctx, "griffpatch")
	require.NoError(t, err)

	id, err := user.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1882674), id)

	country, err := user.Country(ctx)
	require.NoError(t, err)
	assert.Equal(t, "United Kingdom", country)

	joined, err := user.JoinDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2012, joined.Year())

	again, err := client.Users().Fetch(ctx, "GRIFFPATCH")
	require.NoError(t, err)
	assert.Same(t, user, again)
	assert.Equal(t, 1, api.hitCount("/users/griffpatch"))

	for _, requestID := range api.allRequestIDs() {
		assert.NotEmpty(t, requestID)
	}
}

func TestClient_FetchMissing(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)

	_, err := client.Users().Fetch(context.Background(), "nobody")
	require.ErrorIs(t, err, scratch.ErrFetchFailed)
	assert.True(t, scratch.IsNotFound(err))

	user, err := client.Users().Get("nobody")
	require.NoError(t, err)
	assert.False(t, user.Hydrated())

	_, err = user.ID(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, api.hitCount("/users/nobody"))
}

func TestClient_StreamsShareIdentity(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, func(config *scratch.Config) { config.PageSize = 2 })
	ctx := context.Background()

	griffpatch, err := client.Users().Get("griffpatch")
	require.NoError(t, err)

	alice, err := client.Users().Get("alice")
	require.NoError(t, err)

	followers, err := griffpatch.Followers(ctx).All()
	require.NoError(t, err)
	require.Len(t, followers, 3)

	assert.Same(t, alice, followers[0])
	assert.Equal(t, 2, followers[0].Followers(ctx).PageSize())
	assert.Equal(t, 3, api.hitCount("/users/griffpatch/followers"))

	name, err := followers[1].Username(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob", name)
	assert.Equal(t, 0, api.hitCount("/users/bob"))
}

func TestClient_ProjectAuthorIsCached(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, nil)
	ctx := context.Background()

	project, err := client.Projects().Fetch(ctx, 10128407)
	require.NoError(t, err)

	author, err := project.Author(ctx)
	require.NoError(t, err)

	griffpatch, err := client.Users().Get("griffpatch")
	require.NoError(t, err)
	assert.Same(t, griffpatch, author)

	stats, err := project.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(100), stats.Views)
}

func TestClient_SessionHeaders(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, func(config *scratch.Config) {
		config.Session = &scratch.Session{Username: "griffpatch", SessionID: "sid", CSRFToken: "a", APIToken: "tok"}
	})

	_, err := client.Projects().Fetch(context.Background(), 10128407)
	require.NoError(t, err)

	assert.Equal(t, "tok", api.lastToken(t))
	assert.Equal(t, "scratchsessionsid=sid", api.lastCookie())
}

func TestClient_MetricsAndResponseCache(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, func(config *scratch.Config) {
		config.EnableMetrics = true
		config.Cache = &scratch.CacheConfig{
			Type:    scratch.CacheTypeMemory,
			Memory:  &scratch.MemoryCacheConfig{MaxSize: 10},
			Options: &scratch.CacheOptions{TTL: time.Minute, MaxSize: 10},
		}
	})
	ctx := context.Background()

	project, err := client.Projects().Fetch(ctx, 10128407)
	require.NoError(t, err)
	assert.Equal(t, 1, api.hitCount("/projects/10128407"))

	cached, err := client.Transport().Do(ctx, &scratch.Request{Method: http.MethodGet, Path: "/projects/10128407"})
	require.NoError(t, err)
	assert.Contains(t, string(cached.Body), "10128407")
	assert.Equal(t, 1, api.hitCount("/projects/10128407"))

	require.NoError(t, project.Reload(ctx))
	assert.Equal(t, 2, api.hitCount("/projects/10128407"))

	metrics, ok := client.Metrics().GetMetrics(http.MethodGet + " /projects/10128407")
	require.True(t, ok)
	assert.Equal(t, int64(3), metrics.TotalRequests)
}

func TestClient_HydrateAll(t *testing.T) {
	t.Parallel()

	api := newFakeAPI(t)
	client := newTestClient(t, api, func(config *scratch.Config) { config.BatchConcurrency = 2 })

	user, err := client.Users().Get("griffpatch")
	require.NoError(t, err)

	project, err := client.Projects().Get(10128407)
	require.NoError(t, err)

	missing, err := client.Projects().Get(1)
	require.NoError(t, err)

	results := client.HydrateAll(context.Background(), []*scratch.Document{user.Document, project.Document, missing.Document})
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.True(t, results[1].Success)
	assert.False(t, results[2].Success)
}

func TestNewWithTransport(t *testing.T) {
	t.Parallel()

	_, err := NewWithTransport(&scratch.Config{}, nil)
	require.ErrorIs(t, err, scratch.ErrTransportRequired)

	var seen *scratch.Request

	transport := scratch.TransportFunc(func(ctx context.Context, req *scratch.Request) (*scratch.Response, error) {
		seen = req

		return &scratch.Response{StatusCode: http.StatusOK, Body: []byte(`{"id":5,"title":"Custom"}`)}, nil
	})

	client, err := NewWithTransport(&scratch.Config{
		Session:    &scratch.Session{APIToken: "tok"},
		SeedPolicy: scratch.SeedFillUnknown,
		Headers:    map[string]string{"X-Client": "tests"},
		PageSize:   100,
	}, transport)
	require.NoError(t, err)

	project, err := client.Projects().Fetch(context.Background(), 5)
	require.NoError(t, err)

	title, err := project.Title(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Custom", title)

	require.NotNil(t, seen)
	assert.Equal(t, "/projects/5", seen.Path)
	assert.Equal(t, "tok", seen.Headers.Get("X-Token"))
	assert.NotEmpty(t, seen.Headers.Get("X-Request-ID"))
	assert.Equal(t, "tests", seen.Headers.Get("X-Client"))
	assert.Equal(t, 40, project.Remixes(context.Background()).PageSize())
}
