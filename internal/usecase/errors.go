package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("resource not found")
	ErrConflict              = errors.New("operation not allowed in current state")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
