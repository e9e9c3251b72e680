package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking
// infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidCredentials covers both unknown login and wrong password;
	// callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailUnverified rejects login before the second factor is evaluated.
	ErrEmailUnverified = errors.New("email not verified")

	// ErrInvalidCode unifies absent, mismatched and expired one-time codes.
	ErrInvalidCode = errors.New("invalid or expired code")

	// ErrInvalidToken unifies absent, expired and malformed tokens, for both
	// ephemeral tokens and session assertions.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrTokenCreation is an internal fault: the signer failed. It is logged
	// with detail and surfaced to callers without any.
	ErrTokenCreation = errors.New("token creation failed")
)
