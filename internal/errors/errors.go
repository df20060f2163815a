// Package errors holds the sentinel errors shared across the front-end packages.
// Callers wrap them with context and match with Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a missing key in a session storage backend.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is a request that never got an HTTP response.
	ErrNetwork = errors.New("network failure")
	// ErrMalformedIdentity is a 2xx from the identity endpoint without a usable user.
	ErrMalformedIdentity = errors.New("malformed identity response")
	// ErrMalformedLogin is a 2xx from the login endpoint without token and user.
	ErrMalformedLogin = errors.New("malformed login response")

	ErrNoProvider = errors.New("session store used outside of a session provider")
	ErrUnmounted  = errors.New("session store unmounted")

	ErrInvalidRole = errors.New("invalid role")
)

// Wrapf adds context in front of err, keeping it matchable. A nil err stays nil.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
