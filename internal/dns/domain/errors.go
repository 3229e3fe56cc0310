package domain

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/exosync/internal/domain"
)

// Re-export shared sentinel errors so DNS callers do not need to import
// the cross-domain package directly.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = domain.ErrNotFound

	// ErrUnauthorized indicates missing or invalid credentials.
	ErrUnauthorized = domain.ErrUnauthorized

	// ErrRateLimited indicates the provider throttled the request.
	ErrRateLimited = domain.ErrRateLimited

	// ErrConflict indicates a state or uniqueness conflict.
	ErrConflict = domain.ErrConflict

	// ErrUnavailable indicates a transient server-side failure.
	ErrUnavailable = domain.ErrUnavailable
)

var (
	// ErrUnknownZone indicates the zone is absent from the provider's zone list.
	ErrUnknownZone = errors.New("unknown zone")

	// ErrMalformedRecord indicates a raw record whose content does not match
	// the sub-field grammar of its type.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnsupportedType indicates a record type outside the supported set.
	ErrUnsupportedType = errors.New("unsupported record type")

	// ErrInvalidRecord is returned by NewRecord when record data fails validation.
	ErrInvalidRecord = errors.New("invalid record")
)

// MalformedRecordError carries enough context to locate a raw record that
// could not be decoded.
type MalformedRecordError struct {
	Zone     string
	RecordID string
	Type     RecordType
	Content  string
	Reason   string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s %s record %q in zone %s: %s (content %q)",
		ErrMalformedRecord, e.Type, e.RecordID, e.Zone, e.Reason, e.Content)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}
