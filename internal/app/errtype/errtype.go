package errtype

import "errors"

var (
	// ErrNotFound represents the error for the cases when some entity is not found.
	ErrNotFound = errors.New("not found")
	// ErrBadInput represents the error for the cases when the user input is invalid.
	ErrBadInput = errors.New("bad input")
	// ErrUnauthorized represents the error for the cases when the authorization is required.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidEnvironment represents the error for the cases when the environment name is not in the allowlist.
	ErrInvalidEnvironment = errors.New("invalid environment")
	// ErrInvalidCommit represents the error for the cases when the commit hash fails validation.
	ErrInvalidCommit = errors.New("invalid commit hash")
)
