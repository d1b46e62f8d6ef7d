package auth_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/scratch-client/internal/auth"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

var errPromptClosed = errors.New("prompt closed")

func TestFileSessionStore_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", ".scratchSession")
	store := auth.NewFileSessionStore(path)

	_, err := store.Load()
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
	require.ErrorIs(t, err, fs.ErrNotExist)

	session := &scratch.Session{Username: "alice", SessionID: "sid-123", CSRFToken: "a"}
	require.NoError(t, store.Save(session))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","sessionID":"sid-123","csrfToken":"a"}`, string(data))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, session, loaded)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())

	_, err = store.Load()
	require.ErrorIs(t, err, auth.ErrSessionNotFound)
}

func TestFileSessionStore_Defaults(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".scratchSession", auth.NewFileSessionStore("").Path())
	require.ErrorIs(t, auth.NewFileSessionStore(filepath.Join(t.TempDir(), "s")).Save(nil), scratch.ErrNoSession)
}

func TestFileSessionStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".scratchSession")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	_, err := auth.NewFileSessionStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, fs.ErrNotExist)
}

func TestLoginOrRestore(t *testing.T) {
	t.Parallel()
	t.Run("restores and refreshes token", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t)
		store := auth.NewFileSessionStore(filepath.Join(t.TempDir(), ".scratchSession"))
		require.NoError(t, store.Save(&scratch.Session{Username: "Alice", SessionID: "sid-123", CSRFToken: "a", APIToken: "old"}))

		prompter := auth.PrompterFunc(func(ctx context.Context) (string, string, error) {
			t.Error("prompt must not be shown when a session is stored")

			return "", "", errPromptClosed
		})

		session, err := auth.NewAuthenticator(site.server.URL, nil).LoginOrRestore(context.Background(), store, prompter)
		require.NoError(t, err)
		assert.Equal(t, "Alice", session.Username)
		assert.Equal(t, "tok-1", session.APIToken)
	})

	t.Run("prompts and saves when no session", func(t *testing.T) {
		t.Parallel()

		site := newFakeSite(t)
		path := filepath.Join(t.TempDir(), ".scratchSession")
		store := auth.NewFileSessionStore(path)

		prompter := &auth.TerminalPrompter{In: strings.NewReader("alice\nhunter2\n"), Out: &strings.Builder{}}

		session, err := auth.NewAuthenticator(site.server.URL, nil).LoginOrRestore(context.Background(), store, prompter)
		require.NoError(t, err)
		assert.Equal(t, "sid-123", session.SessionID)

		saved, err := store.Load()
		require.NoError(t, err)
		assert.Equal(t, session, saved)
	})

	t.Run("other store errors propagate", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".scratchSession")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		prompted := false
		prompter := auth.PrompterFunc(func(ctx context.Context) (string, string, error) {
			prompted = true

			return "", "", errPromptClosed
		})

		_, err := auth.NewAuthenticator("http://127.0.0.1:0", nil).LoginOrRestore(context.Background(), auth.NewFileSessionStore(path), prompter)
		require.Error(t, err)
		assert.False(t, prompted)
	})

	t.Run("prompt failure", func(t *testing.T) {
		t.Parallel()

		store := auth.NewFileSessionStore(filepath.Join(t.TempDir(), ".scratchSession"))
		prompter := auth.PrompterFunc(func(ctx context.Context) (string, string, error) {
			return "", "", errPromptClosed
		})

		_, err := auth.NewAuthenticator("http://127.0.0.1:0", nil).LoginOrRestore(context.Background(), store, prompter)
		require.ErrorIs(t, err, errPromptClosed)
	})
}

func TestTerminalPrompter_PresetUsername(t *testing.T) {
	t.Parallel()

	out := &strings.Builder{}
	prompter := &auth.TerminalPrompter{In: strings.NewReader("s3cret\r\n"), Out: out, Username: "bob"}

	username, password, err := prompter.Prompt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bob", username)
	assert.Equal(t, "s3cret", password)
	assert.Equal(t, "Password: ", out.String())
}
