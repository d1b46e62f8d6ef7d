package constants

import "errors"

// Configuration errors.
var (
	ErrNoSessionConfigured = errors.New("no session configured, use 'scratch login' first")
	ErrUsernameRequired    = errors.New("username is required")
	ErrPasswordRequired    = errors.New("password is required")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, expected table, json or yaml")
	ErrInvalidLimit        = errors.New("limit must be positive")
)
