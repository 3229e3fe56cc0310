package domain

import "context"

// Client is the interface that DNS API transports must implement.
// It covers zone listing and the raw record operations the adapter needs.
type Client interface {
	// GetDisplayName returns the human-readable provider name (e.g. "Exoscale").
	GetDisplayName() string

	// ListDomains returns all zones hosted in the provider account.
	ListDomains(ctx context.Context) ([]Domain, error)

	// ListRecords returns all raw records of the zone with the given ID.
	ListRecords(ctx context.Context, zoneID string) ([]RawRecord, error)

	// CreateRecord creates one raw record and returns its provider ID.
	CreateRecord(ctx context.Context, zoneID string, opts CreateRecordOpts) (string, error)

	// DeleteRecord deletes a raw record by its ID.
	DeleteRecord(ctx context.Context, zoneID string, id string) error
}

// Capabilities declares what the adapter supports.
type Capabilities struct {
	Types                   []RecordType
	SupportsGeo             bool
	SupportsRootNS          bool
	SupportsPoolValueStatus bool
}

// Supports reports whether t is one of the declared types.
func (c Capabilities) Supports(t RecordType) bool {
	for _, s := range c.Types {
		if s == t {
			return true
		}
	}
	return false
}
