package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPermissionDenied marks a role mismatch (e.g. a student calling a teacher operation).
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict marks an operation rejected by the current resource state.
	ErrConflict = errors.New("conflict")
)
