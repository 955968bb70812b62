package services

import "errors"

var (
	// ErrStatsPending means GitHub is still computing contributor statistics (HTTP 202)
	ErrStatsPending = errors.New("contributor statistics are being computed")
	// ErrNotAuthenticated means the operation needs a signed-in user with a GitHub token
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidSettings wraps every user settings validation failure
	ErrInvalidSettings = errors.New("invalid settings")
	// ErrQueryRequired is returned by searches called without a query
	ErrQueryRequired = errors.New("query is required")
)
