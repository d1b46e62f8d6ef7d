// Package scratchclient provides the main entry point for creating Scratch API clients
package scratchclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/scratch-client/internal/auth"
	"github.com/fivetwenty-io/scratch-client/internal/client"
	"github.com/fivetwenty-io/scratch-client/internal/constants"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// New creates a new Scratch API client. Config is not modified.
func New(ctx context.Context, config *scratch.Config) (scratch.Client, error) {
	if config == nil {
		return nil, scratch.ErrConfigRequired
	}

	normalized := *config
	normalized.APIEndpoint = NormalizeEndpoint(config.APIEndpoint, constants.DefaultAPIEndpoint)
	normalized.SiteEndpoint = NormalizeEndpoint(config.SiteEndpoint, constants.DefaultSiteEndpoint)

	client, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return client, nil
}

// NewWithEndpoint creates an anonymous client for the given API endpoint.
func NewWithEndpoint(ctx context.Context, endpoint string) (scratch.Client, error) {
	return New(ctx, &scratch.Config{APIEndpoint: endpoint})
}

// NewWithSession creates a client authenticated with an existing session.
func NewWithSession(ctx context.Context, session *scratch.Session) (scratch.Client, error) {
	if session == nil {
		return nil, scratch.ErrNoSession
	}

	return New(ctx, &scratch.Config{Session: session})
}

// Login signs in with username and password and returns a client using the
// new session. config may be nil.
func Login(ctx context.Context, config *scratch.Config, username, password string) (scratch.Client, error) {
	base := configOrDefault(config)

	session, err := authenticator(base).Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	base.Session = session

	return New(ctx, base)
}

// LoginOrRestore restores the session saved in sessionFile, or prompts for
// credentials on the terminal, logs in and saves the session there. An empty
// sessionFile means .scratchSession in the working directory.
func LoginOrRestore(ctx context.Context, config *scratch.Config, sessionFile string) (scratch.Client, error) {
	base := configOrDefault(config)

	session, err := authenticator(base).LoginOrRestore(ctx, auth.NewFileSessionStore(sessionFile), auth.NewTerminalPrompter())
	if err != nil {
		return nil, err
	}

	base.Session = session

	return New(ctx, base)
}

// NormalizeEndpoint trims a trailing slash and adds "https://" when no scheme
// is present. An empty endpoint yields fallback.
func NormalizeEndpoint(endpoint, fallback string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return fallback
	}

	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}

	return endpoint
}

func configOrDefault(config *scratch.Config) *scratch.Config {
	if config == nil {
		return &scratch.Config{}
	}

	copied := *config

	return &copied
}

func authenticator(config *scratch.Config) *auth.Authenticator {
	return auth.NewAuthenticator(NormalizeEndpoint(config.SiteEndpoint, constants.DefaultSiteEndpoint), config.Logger)
}
