package errors

import (
	"errors"
	"fmt"
)

// Common error types for the session client
var (
	// Credential errors
	ErrNoCredentials   = errors.New("no stored credentials")
	ErrPartialResponse = errors.New("token response missing access or refresh token")
	ErrRefreshFailed   = errors.New("refresh failed")

	// Authentication errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrLoginFailed      = errors.New("login failed")
	ErrInviteRejected   = errors.New("invite rejected")

	// Configuration errors
	ErrMissingBaseURL = errors.New("missing API base URL")

	// Role / navigation errors
	ErrInvalidRole     = errors.New("invalid role")
	ErrInvalidManifest = errors.New("invalid navigation manifest")
	ErrDuplicateRoute  = errors.New("route bound more than once")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
