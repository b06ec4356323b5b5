// Package common defines shared sentinel errors used across the
// progresslapse server layers. Callers should use errors.Is to match
// these values; lower layers wrap them with fmt.Errorf("...: %w", err)
// to add detail without losing the classification.
package common

import "errors"

var (
	// Startup-fatal configuration problems (missing master secret, bad DSN).
	ErrConfiguration = errors.New("configuration error")

	// User-correctable request problems (bad range, fps, unknown category).
	ErrInvalidArgument = errors.New("invalid argument")

	// Ownership violation. Handlers surface this as not-found so that
	// probing requests cannot distinguish "exists but not yours" from
	// "does not exist".
	ErrForbidden = errors.New("forbidden")

	// Missing record or blob.
	ErrNotFound = errors.New("not found")

	// Ciphertext authentication failure or key mismatch. Never exposes
	// cryptographic detail to the caller.
	ErrDecryption = errors.New("decryption failed")

	// Object-store or network failure. Retryable by the caller; nothing
	// in this server retries automatically.
	ErrBackend = errors.New("storage backend error")

	// External encoder failure; the whole compilation aborts.
	ErrEncoding = errors.New("encoding failed")

	// Sliding-window video quota exhausted for a non-premium user.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
