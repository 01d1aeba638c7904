package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates signin failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken indicates a missing, malformed, expired or forged bearer token.
	ErrInvalidToken = errors.New("invalid token")
	// ErrForbidden indicates the principal lacks the required capability.
	ErrForbidden = errors.New("forbidden")
)
