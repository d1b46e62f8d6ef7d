package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fivetwenty-io/scratch-client/internal/constants"
	scratchhttp "github.com/fivetwenty-io/scratch-client/internal/http"
	"github.com/fivetwenty-io/scratch-client/pkg/scratch"
)

// Static errors for err113 compliance.
var (
	ErrNoSessionCookie   = errors.New("login response carried no session cookie")
	ErrEmptyLoginResult  = errors.New("empty login response")
	ErrNoAPIToken        = errors.New("session response carried no API token")
	ErrSessionIDRequired = errors.New("session ID is required")
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginFlag accepts both 0/1 and false/true.
type loginFlag bool

func (f *loginFlag) UnmarshalJSON(data []byte) error {
	switch strings.TrimSpace(string(data)) {
	case "1", "true":
		*f = true
	default:
		*f = false
	}

	return nil
}

type loginResult struct {
	Success  loginFlag `json:"success"`
	Message  string    `json:"msg"`
	Username string    `json:"username"`
}

type sessionResponse struct {
	User struct {
		Username string `json:"username"`
		Token    string `json:"token"`
	} `json:"user"`
}

// Authenticator performs the website login handshake.
type Authenticator struct {
	siteURL string
	client  *scratchhttp.Client
	logger  scratch.Logger
}

// NewAuthenticator creates an authenticator for the website at siteURL.
func NewAuthenticator(siteURL string, logger scratch.Logger, opts ...scratchhttp.Option) *Authenticator {
	if siteURL == "" {
		siteURL = constants.DefaultSiteEndpoint
	}

	siteURL = strings.TrimSuffix(siteURL, "/")

	if logger == nil {
		logger = scratch.NopLogger{}
	}

	return &Authenticator{
		siteURL: siteURL,
		client:  scratchhttp.NewClient(siteURL, nil, opts...),
		logger:  logger,
	}
}

// Login signs in with username and password and returns the new session,
// including its API token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*scratch.Session, error) {
	if username == "" {
		return nil, constants.ErrUsernameRequired
	}

	if password == "" {
		return nil, constants.ErrPasswordRequired
	}

	resp, err := a.client.Do(ctx, &scratchhttp.Request{
		Method: http.MethodPost,
		Path:   "/login/",
		Body:   loginRequest{Username: username, Password: password},
		Headers: map[string]string{
			"Cookie":           constants.CSRFCookieName + "=" + constants.CSRFToken,
			"X-Requested-With": "XMLHttpRequest",
			"X-CSRFToken":      constants.CSRFToken,
			"Referer":          a.siteURL,
		},
	})
	if resp == nil {
		return nil, fmt.Errorf("%w: %w", scratch.ErrLoginFailed, err)
	}

	var results []loginResult

	jsonErr := json.Unmarshal(resp.Body, &results)
	if jsonErr != nil || len(results) == 0 {
		if err != nil {
			return nil, fmt.Errorf("%w: %w", scratch.ErrLoginFailed, err)
		}

		return nil, fmt.Errorf("%w: %w", scratch.ErrLoginFailed, ErrEmptyLoginResult)
	}

	result := results[0]
	if !result.Success {
		a.logger.Warn("Login rejected", map[string]interface{}{"username": username, "message": result.Message})

		return nil, fmt.Errorf("%w: %s", scratch.ErrLoginFailed, result.Message)
	}

	sessionID := SessionIDFromHeaders(resp.Headers)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: %w", scratch.ErrLoginFailed, ErrNoSessionCookie)
	}

	apiToken, err := a.FetchAPIToken(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if result.Username != "" {
		username = result.Username
	}

	a.logger.Info("Logged in", map[string]interface{}{"username": username})

	return &scratch.Session{
		Username:  username,
		SessionID: sessionID,
		CSRFToken: constants.CSRFToken,
		APIToken:  apiToken,
	}, nil
}

// FetchAPIToken exchanges a session ID for the API token of that session.
func (a *Authenticator) FetchAPIToken(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrSessionIDRequired
	}

	resp, err := a.client.Do(ctx, &scratchhttp.Request{
		Method: http.MethodGet,
		Path:   "/session",
		Headers: map[string]string{
			"Cookie":           constants.SessionCookieName + "=" + sessionID,
			"X-Requested-With": "XMLHttpRequest",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch API token: %w", err)
	}

	var session sessionResponse

	err = json.Unmarshal(resp.Body, &session)
	if err != nil {
		return "", fmt.Errorf("failed to decode session response: %w", err)
	}

	if session.User.Token == "" {
		return "", ErrNoAPIToken
	}

	return session.User.Token, nil
}

// SessionIDFromHeaders returns the session ID set by a response, or "".
func SessionIDFromHeaders(headers http.Header) string {
	for _, line := range headers.Values("Set-Cookie") {
		cookie, err := http.ParseSetCookie(line)
		if err != nil {
			continue
		}

		if cookie.Name == constants.SessionCookieName {
			return cookie.Value
		}
	}

	return ""
}

// ParseCookies parses a Cookie header value into a name to value map. Pairs
// that do not parse are skipped.
func ParseCookies(header string) map[string]string {
	result := make(map[string]string)

	for part := range strings.SplitSeq(header, ";") {
		cookies, err := http.ParseCookie(strings.TrimSpace(part))
		if err != nil {
			continue
		}

		for _, cookie := range cookies {
			result[cookie.Name] = cookie.Value
		}
	}

	return result
}
