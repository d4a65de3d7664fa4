package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already exists")

	// Question errors
	ErrQuestionNotFound = errors.New("question not found")

	// Round errors
	ErrRoundNotFound      = errors.New("round not found")
	ErrRoundAlreadyClosed = errors.New("round is already closed")

	// Backend errors
	ErrBackendUnavailable = errors.New("persistence backend unavailable")
)
