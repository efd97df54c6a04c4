package errors

import (
	"errors"
	"fmt"
)

// Common error types for the gateway
var (
	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// Registration errors
	ErrUnknownBucket   = errors.New("unknown invoices-per-month bucket")
	ErrMissingEmail    = errors.New("email is required")
	ErrMissingPassword = errors.New("password is required")

	// Integration errors
	ErrIntegrationNotFound  = errors.New("integration not found")
	ErrMissingOAuthClientID = errors.New("oauth client id is not configured")
	ErrIntegrationUsesOAuth = errors.New("integration must be connected through the oauth flow")
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
