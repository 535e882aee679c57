package auth

import "errors"

// Authorization failure kinds. Handlers map these to HTTP status codes;
// nothing in this package writes HTTP responses.
var (
	// ErrUnauthorized means no valid session was presented.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the session is valid but the role is insufficient.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidCredentials is returned at login time for both unknown
	// users and wrong passwords, so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
