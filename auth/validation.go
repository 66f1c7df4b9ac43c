package auth

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jrsteele09/bountip-console/internal/errors"
)

// ValidateCredentials checks login input before it is sent to the API.
func ValidateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required: %w", errors.ErrInvalidInput)
	}

	// Basic email format validation
	at := strings.LastIndex(email, "@")
	if at < 1 || !strings.Contains(email[at:], ".") {
		return fmt.Errorf("invalid email format: %w", errors.ErrInvalidInput)
	}

	if password == "" {
		return fmt.Errorf("password is required: %w", errors.ErrInvalidInput)
	}
	return nil
}

// ValidateRedirectURL checks the identity-provider callback address.
func ValidateRedirectURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("redirect url is required: %w", errors.ErrInvalidInput)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid redirect url: %w", errors.ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("redirect url must use http or https scheme: %w", errors.ErrInvalidInput)
	}
	if u.Fragment != "" {
		return fmt.Errorf("redirect url must not contain fragments: %w", errors.ErrInvalidInput)
	}
	return nil
}

// ValidateState checks the state echoed back on the callback.
func ValidateState(state string) error {
	if len(state) < 8 {
		return fmt.Errorf("state parameter should be at least 8 characters: %w", errors.ErrInvalidInput)
	}
	if strings.TrimSpace(state) != state {
		return fmt.Errorf("state parameter must not contain leading/trailing whitespace: %w", errors.ErrInvalidInput)
	}
	return nil
}
