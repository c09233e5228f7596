package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound        = errors.New("domain: not found")
	ErrUnauthorized    = errors.New("domain: unauthorized")
	ErrUnauthenticated = errors.New("domain: unauthenticated")
	ErrValidation      = errors.New("domain: validation failed")
	ErrNothingToUndo   = errors.New("domain: nothing to undo")
)
