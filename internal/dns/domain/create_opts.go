package domain

// CreateRecordOpts holds the parameters for creating one raw DNS record.
// A normalized record with N values expands to N of these.
type CreateRecordOpts struct {
	// Name is the record name relative to the zone.
	// The apex uses the dialect's apex spelling.
	Name string

	// Type is the DNS record type. Required.
	Type RecordType

	// TTL is the time-to-live in seconds.
	TTL int

	// Content is the wire-encoded record value. Required.
	Content string

	// Priority is sent as a separate field for MX and SRV records when the
	// dialect does not embed it in Content.
	Priority *int
}
