package core

import (
	"errors"
)

var (
	// ErrUnauthenticated means there is no valid session.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the requester is authenticated but lacks the role
	// or ownership required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means there is no such task. A scoped write which affected
	// zero rows is reported as ErrNotFound too, never as success.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidInput covers missing required fields and incomplete ratings.
	ErrInvalidInput = errors.New("invalid input")
)
