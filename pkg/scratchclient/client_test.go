package scratchclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
	"github.com/fivetwenty-io/scratch-client/pkg/scratchclient"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("creates client with config", func(t *testing.T) {
		t.Parallel()

		client, err := scratchclient.New(context.Background(), &scratch.Config{APIEndpoint: "api.example.com/"})
		require.NoError(t, err)
		assert.NotNil(t, client)
		assert.NoError(t, client.Close())
	})

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := scratchclient.New(context.Background(), nil)
		require.ErrorIs(t, err, scratch.ErrConfigRequired)
	})

	t.Run("does not modify config", func(t *testing.T) {
		t.Parallel()

		config := &scratch.Config{APIEndpoint: "api.example.com/"}
		_, err := scratchclient.New(context.Background(), config)
		require.NoError(t, err)
		assert.Equal(t, "api.example.com/", config.APIEndpoint)
		assert.Empty(t, config.SiteEndpoint)
	})
}

func TestNewWithEndpoint(t *testing.T) {
	t.Parallel()

	client, err := scratchclient.NewWithEndpoint(context.Background(), "https://api.example.com")
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewWithSession(t *testing.T) {
	t.Parallel()

	_, err := scratchclient.NewWithSession(context.Background(), nil)
	require.ErrorIs(t, err, scratch.ErrNoSession)

	client, err := scratchclient.NewWithSession(context.Background(), &scratch.Session{Username: "alice", SessionID: "sid", APIToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "alice", client.Session().Username)
}

func TestNormalizeEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		endpoint string
		expected string
	}{
		{name: "empty uses fallback", endpoint: "", expected: "https://api.scratch.mit.edu"},
		{name: "adds scheme", endpoint: "api.example.com", expected: "https://api.example.com"},
		{name: "trims slash", endpoint: "https://api.example.com/", expected: "https://api.example.com"},
		{name: "keeps http", endpoint: "http://localhost:8080", expected: "http://localhost:8080"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, scratchclient.NormalizeEndpoint(testCase.endpoint, "https://api.scratch.mit.edu"))
		})
	}
}

// newScratchServer serves both the website login endpoints and the API.
func newScratchServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("POST /login/", func(writer http.ResponseWriter, request *http.Request) {
		http.SetCookie(writer, &http.Cookie{Name: "scratchsessionsid", Value: "sid-1"})
		_, _ = writer.Write([]byte(`[{"success":1,"msg":"","username":"alice"}]`))
	})

	mux.HandleFunc("GET /session", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"user":{"username":"alice","token":"api-token"}}`))
	})

	mux.HandleFunc("GET /users/alice", func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "api-token", request.Header.Get("X-Token"))
		_ = json.NewEncoder(writer).Encode(map[string]interface{}{"id": 7, "username": "alice"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func TestLogin(t *testing.T) {
	t.Parallel()

	server := newScratchServer(t)
	ctx := context.Background()

	client, err := scratchclient.Login(ctx, &scratch.Config{APIEndpoint: server.URL, SiteEndpoint: server.URL}, "alice", "pw")
	require.NoError(t, err)

	session := client.Session()
	require.NotNil(t, session)
	assert.Equal(t, "sid-1", session.SessionID)
	assert.Equal(t, "api-token", session.APIToken)

	user, err := client.Users().Fetch(ctx, "alice")
	require.NoError(t, err)

	id, err := user.ID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestLoginOrRestore_FromFile(t *testing.T) {
	t.Parallel()

	server := newScratchServer(t)
	path := filepath.Join(t.TempDir(), ".scratchSession")
	require.NoError(t, os.WriteFile(path, []byte(`{"username":"alice","sessionID":"sid-1","csrfToken":"a"}`), 0o600))

	client, err := scratchclient.LoginOrRestore(context.Background(), &scratch.Config{APIEndpoint: server.URL, SiteEndpoint: server.URL}, path)
	require.NoError(t, err)
	assert.Equal(t, "api-token", client.Session().APIToken)
}
