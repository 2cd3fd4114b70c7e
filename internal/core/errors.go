package core

import "errors"

// Error taxonomy shared by every layer. The services return these sentinels
// (usually wrapped with fmt.Errorf("...: %w", ...)); the HTTP layer maps them
// to status codes and never the other way around.
var (
	// ErrConflict signals a uniqueness violation, e.g. a duplicate email.
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized covers bad credentials and invalid or expired tokens.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound signals an unknown id within the requesting user's scope.
	ErrNotFound = errors.New("not found")

	// ErrValidation signals a malformed amount or a missing required field.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable signals that the store is unreachable. Callers may retry.
	ErrUnavailable = errors.New("store unavailable")
)
