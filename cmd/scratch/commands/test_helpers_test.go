package commands_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/scratch-client/cmd/scratch/commands"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

var followers = []map[string]interface{}{
	{"id": 1, "username": "alice"},
	{"id": 2, "username": "bob"},
	{"id": 3, "username": "carol"},
}

// newScratchAPI serves the endpoints the commands read.
func newScratchAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /users/{name}", func(writer http.ResponseWriter, request *http.Request) {
		if request.PathValue("name") != "griffpatch" {
			writer.WriteHeader(http.StatusNotFound)
			_, _ = writer.Write([]byte(`{"code":"NotFound","message":""}`))

			return
		}

		_, _ = writer.Write([]byte(`{
			"id": 1882674,
			"username": "griffpatch",
			"scratchteam": false,
			"history": {"joined": "2012-10-24T12:59:40.000Z"},
			"profile": {"id": 1, "status": "Scratching", "bio": "Game maker", "country": "United Kingdom"}
		}`))
	})

	mux.HandleFunc("GET /users/{name}/followers", func(writer http.ResponseWriter, request *http.Request) {
		offset, _ := strconv.Atoi(request.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(request.URL.Query().Get("limit"))

		page := []map[string]interface{}{}
		if offset < len(followers) {
			page = followers[offset:min(offset+limit, len(followers))]
		}

		_ = json.NewEncoder(writer).Encode(page)
	})

	mux.HandleFunc("GET /projects/10128407", func(writer http.ResponseWriter, request *http.Request) {
		_, _ = writer.Write([]byte(`{
			"id": 10128407,
			"title": "Paper Minecraft",
			"author": {"id": 1882674, "username": "griffpatch"},
			"stats": {"views": 100, "loves": 10, "favorites": 5, "remixes": 1}
		}`))
	})

	mux.HandleFunc("GET /projects/10128407/remixes", func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Query().Get("offset") != "0" {
			_, _ = writer.Write([]byte(`[]`))

			return
		}

		_, _ = writer.Write([]byte(`[{"id": 42, "title": "Paper Minecraft remix"}]`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// runCommand executes the root command with args against a fresh viper
// state and returns what it printed.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	base := []string{
		"--session-file", filepath.Join(dir, ".scratchSession"),
		"--config", filepath.Join(dir, "config.yml"),
	}

	root := commands.NewRootCommand("1.2.3", "abc", "today")

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(base, args...))

	err := root.Execute()

	return out.String(), err
}
