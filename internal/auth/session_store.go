package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// ErrSessionNotFound is returned by a SessionStore holding no session. It
// matches fs.ErrNotExist.
var ErrSessionNotFound = fmt.Errorf("session not found: %w", fs.ErrNotExist)

// SessionStore persists a login session between runs.
type SessionStore interface {
	Load() (*scratch.Session, error)
	Save(session *scratch.Session) error
	Clear() error
}

// FileSessionStore keeps the session as JSON in a single file.
type FileSessionStore struct {
	path string
}

// NewFileSessionStore creates a store at path, defaulting to .scratchSession
// in the working directory.
func NewFileSessionStore(path string) *FileSessionStore {
	if path == "" {
		path = constants.DefaultSessionFile
	}

	return &FileSessionStore{path: path}
}

// Path returns the session file path.
func (s *FileSessionStore) Path() string {
	return s.path
}

// Load reads the session file.
func (s *FileSessionStore) Load() (*scratch.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSessionNotFound
		}

		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session scratch.Session

	err = json.Unmarshal(data, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", s.path, err)
	}

	return &session, nil
}

// Save writes the session file, creating its directory if needed.
func (s *FileSessionStore) Save(session *scratch.Session) error {
	if session == nil {
		return scratch.ErrNoSession
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		err := os.MkdirAll(dir, constants.ConfigDirPerm)
		if err != nil {
			return fmt.Errorf("failed to create session directory: %w", err)
		}
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Clear removes the session file. A missing file is not an error.
func (s *FileSessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}
