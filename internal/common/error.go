// Package common defines shared constants and sentinel errors used across
// AI CodeHub components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound           = errors.New("not found")
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Registration / profile errors.
	ErrValidation    = errors.New("validation failed")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")

	// Login errors. Unknown user and wrong password both map here so the
	// response never reveals which check failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// Guard-time errors. Each one is a distinct failure kind; the transport
	// layer decides whether clients see them as distinct.
	ErrMissingCredential   = errors.New("missing credential")
	ErrMalformedCredential = errors.New("malformed credential")
	ErrExpiredCredential   = errors.New("credential expired")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrInactiveIdentity    = errors.New("identity is inactive")
	ErrUnknownIdentity     = errors.New("unknown identity")

	// Authorization errors (authenticated but not allowed).
	ErrForbidden = errors.New("forbidden")

	// Generic internal flow control.
	ErrInternal = errors.New("internal error")
)
