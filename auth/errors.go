package auth

import "errors"

var (
	// ErrValidation signals missing or malformed input the client can fix.
	ErrValidation = errors.New("missing required fields")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password so callers cannot probe which emails are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken is the single error all token validation failures
	// (expired, malformed, bad signature) normalise to.
	ErrInvalidToken = errors.New("token is expired or invalid")
)
