package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// Static errors for err113 compliance.
var (
	ErrNoAuthenticator = errors.New("no authenticator configured")
)

// SessionTokenManager serves the API token of a login session and re-fetches
// it from the website when asked to refresh. Refreshed tokens are written
// back through the store when one is set.
type SessionTokenManager struct {
	authenticator *Authenticator
	store         SessionStore
	logger        scratch.Logger
	mutex         sync.RWMutex
	session       *scratch.Session
}

// NewSessionTokenManager creates a token manager for session. Both
// authenticator and store are optional.
func NewSessionTokenManager(session *scratch.Session, authenticator *Authenticator, store SessionStore, logger scratch.Logger) *SessionTokenManager {
	if logger == nil {
		logger = scratch.NopLogger{}
	}

	var owned *scratch.Session
	if session != nil {
		copied := *session
		owned = &copied
	}

	return &SessionTokenManager{
		authenticator: authenticator,
		store:         store,
		logger:        logger,
		session:       owned,
	}
}

// GetToken returns the API token, fetching it first when the session has
// none yet. It returns scratch.ErrNoSession when there is no session.
func (m *SessionTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.RLock()
	session := m.session
	token := ""

	if session != nil {
		token = session.APIToken
	}
	m.mutex.RUnlock()

	if session == nil {
		return "", scratch.ErrNoSession
	}

	if token != "" {
		return token, nil
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.session.APIToken, nil
}

// RefreshToken re-fetches the API token of the session.
func (m *SessionTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.session == nil {
		return scratch.ErrNoSession
	}

	if m.authenticator == nil {
		return ErrNoAuthenticator
	}

	token, err := m.authenticator.FetchAPIToken(ctx, m.session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to refresh API token: %w", err)
	}

	m.session.APIToken = token

	m.persist()

	return nil
}

// SetToken manually sets the API token. Scratch tokens carry no expiry, so
// expiresAt is ignored.
func (m *SessionTokenManager) SetToken(token string, _ time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.session == nil {
		m.session = &scratch.Session{}
	}

	m.session.APIToken = token
}

// Session returns a copy of the current session, or nil.
func (m *SessionTokenManager) Session() *scratch.Session {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.session == nil {
		return nil
	}

	copied := *m.session

	return &copied
}

// persist must be called with the write lock held.
func (m *SessionTokenManager) persist() {
	if m.store == nil {
		return
	}

	err := m.store.Save(m.session)
	if err != nil {
		m.logger.Warn("Failed to persist refreshed token", map[string]interface{}{"error": err.Error()})
	}
}
