package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

const griffpatchBody = `{
	"id": 1882674,
	"username": "griffpatch",
	"scratchteam": false,
	"history": {"joined": "2012-10-24T12:59:40.000Z"},
	"profile": {"id": 1, "status": "Scratching", "bio": "Game maker", "country": "United Kingdom"}
}`

const paperMinecraftBody = `{
	"id": 10128407,
	"title": "Paper Minecraft",
	"description": "2D Minecraft",
	"instructions": "WASD to move",
	"author": {"id": 1882674, "username": "griffpatch"},
	"stats": {"views": 100, "loves": 10, "favorites": 5, "remixes": 2}
}`

var griffpatchFollowers = []map[string]interface{}{
	{"id": 1, "username": "Alice"},
	{"id": 2, "username": "bob"},
	{"id": 3, "username": "Carol"},
}

// fakeAPI serves a tiny slice of the users and projects API plus the
// website session endpoint.
type fakeAPI struct {
	server *httptest.Server

	mu         sync.Mutex
	hits       map[string]int
	tokens     []string
	cookies    []string
	requestIDs []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{hits: make(map[string]int)}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users/{name}", func(writer http.ResponseWriter, request *http.Request) {
		if strings.ToLower(request.PathValue("name")) != "griffpatch" {
			notFound(writer)

			return
		}

		_, _ = writer.Write([]byte(griffpatchBody))
	})

	mux.HandleFunc("GET /users/{name}/followers", func(writer http.ResponseWriter, request *http.Request) {
		offset, _ := strconv.Atoi(request.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

		page := []map[string]interface{}{}
		if offset < len(griffpatchFollowers) {
			page = griffpatchFollowers[offset:min(offset+limit, len(griffpatchFollowers))]
		}

		_ = json.NewEncoder(writer).Encode(page)
	})

	mux.HandleFunc("GET /projects/{id}", func(writer http.ResponseWriter, request *http.Request) {
		if request.PathValue("id") != "10128407" {
			notFound(writer)

			return
		}

		_, _ = writer.Write([]byte(paperMinecraftBody))
	})

	mux.HandleFunc("GET /session", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{"user":{"username":"griffpatch","token":"fresh-token"}}`))
	})

	api.server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		api.mu.Lock()
		api.hits[request.URL.Path]++
		api.tokens = append(api.tokens, request.Header.Get("X-Token"))
		api.cookies = append(api.cookies, request.Header.Get("Cookie"))
		api.requestIDs = append(api.requestIDs, request.Header.Get("X-Request-ID"))
		api.mu.Unlock()

		mux.ServeHTTP(writer, request)
	}))
	t.Cleanup(api.server.Close)

	return api
}

func notFound(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNotFound)
	_, _ = writer.Write([]byte(`{"code":"NotFound","message":""}`))
}

func (a *fakeAPI) hitCount(path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.hits[path]
}

func (a *fakeAPI) lastToken(t *testing.T) string {
	t.Helper()

	a.mu.Lock()
	defer a.mu.Unlock()

	if !assert.NotEmpty(t, a.tokens) {
		return ""
	}

	return a.tokens[len(a.tokens)-1]
}

func (a *fakeAPI) lastCookie() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.cookies) == 0 {
		return ""
	}

	return a.cookies[len(a.cookies)-1]
}

func (a *fakeAPI) allRequestIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	return append([]string(nil), a.requestIDs...)
}
