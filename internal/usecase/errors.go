package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrMatchLocked           = errors.New("match locked for predictions")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
