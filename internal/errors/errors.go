package errors

import (
	"errors"
	"fmt"
)

// Common error types for the merchant console core
var (
	// Session errors
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidNonce    = errors.New("invalid nonce")
	ErrMissingIDToken  = errors.New("missing id token")
	ErrInvalidTokenSet = errors.New("token response is missing an access token")

	// Business context errors
	ErrOutletNotFound  = errors.New("outlet not found")
	ErrDuplicateOutlet = errors.New("duplicate outlet id")

	// Transport and envelope errors
	ErrInvalidEnvelope  = errors.New("invalid response envelope")
	ErrIncompleteUpload = errors.New("upload response is missing url or phash")

	// Cookie errors
	ErrEmptyCookieName = errors.New("cookie name must not be empty")

	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
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
