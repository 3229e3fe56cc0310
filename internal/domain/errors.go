package domain

import "errors"

// Sentinel errors for transport error classification.
// API clients should wrap these so callers can handle error categories
// uniformly without depending on provider response formats.
//
//	return fmt.Errorf("failed to delete record: %w", domain.ErrNotFound)
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict, such as
	// creating a record that collides with an existing one.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable indicates a server-side failure that is usually
	// transient (HTTP 5xx).
	ErrUnavailable = errors.New("service unavailable")
)
