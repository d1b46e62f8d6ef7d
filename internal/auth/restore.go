package auth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// PromptLogin asks for credentials and logs in with them.
func (a *Authenticator) PromptLogin(ctx context.Context, prompter Prompter) (*scratch.Session, error) {
	username, password, err := prompter.Prompt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	return a.Login(ctx, username, password)
}

// LoginOrRestore restores the session held by store and refreshes its API
// token. When the store holds no session it prompts, logs in and saves the
// new session. Any other store error is returned as is.
func (a *Authenticator) LoginOrRestore(ctx context.Context, store SessionStore, prompter Prompter) (*scratch.Session, error) {
	session, err := store.Load()

	switch {
	case err == nil:
		token, fetchErr := a.FetchAPIToken(ctx, session.SessionID)
		if fetchErr != nil {
			return nil, fetchErr
		}

		session.APIToken = token
		a.logger.Debug("Restored session", map[string]interface{}{"username": session.Username})

		return session, nil
	case errors.Is(err, fs.ErrNotExist):
		session, err = a.PromptLogin(ctx, prompter)
		if err != nil {
			return nil, err
		}

		err = store.Save(session)
		if err != nil {
			return nil, err
		}

		return session, nil
	default:
		return nil, err
	}
}
