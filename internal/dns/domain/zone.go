package domain

import (
	"fmt"
	"net/netip"
	"strings"

	"nathanbeddoewebdev/exosync/internal/util"
)

// Zone is a DNS zone identified by its fully-qualified name, holding the
// normalized records collected for it.
type Zone struct {
	// Name is the fully-qualified zone name with trailing dot.
	Name string

	records []*Record
}

// NewZone returns an empty zone. The name is given a trailing dot if missing.
func NewZone(name string) *Zone {
	return &Zone{Name: util.EnsureFQDN(strings.TrimSpace(name))}
}

// Records returns the zone's records in insertion order.
func (z *Zone) Records() []*Record {
	out := make([]*Record, len(z.records))
	copy(out, z.records)
	return out
}

// Len returns the number of records in the zone.
func (z *Zone) Len() int {
	return len(z.records)
}

// Lookup returns the record with the given relative name and type, or nil.
func (z *Zone) Lookup(name string, t RecordType) *Record {
	for _, r := range z.records {
		if r.Name == name && r.Type == t {
			return r
		}
	}
	return nil
}

// AddRecord adds r to the zone. A second record with the same name and type,
// or a CNAME sharing its name with another record, is rejected unless lenient
// is set, in which case the new record replaces an existing one of the same
// name and type.
func (z *Zone) AddRecord(r *Record, lenient bool) error {
	for i, existing := range z.records {
		if existing.Name != r.Name {
			continue
		}
		if existing.Type == r.Type {
			if !lenient {
				return fmt.Errorf("%w: duplicate %s record %q", ErrConflict, r.Type, r.FQDN())
			}
			z.records[i] = r
			return nil
		}
		if !lenient && (existing.Type == RecordTypeCNAME || r.Type == RecordTypeCNAME) {
			return fmt.Errorf("%w: CNAME %q cannot coexist with other records", ErrConflict, r.FQDN())
		}
	}
	z.records = append(z.records, r)
	return nil
}

// NewRecord builds a validated record for zone. When lenient is true,
// validation failures are ignored and the record is returned as given;
// an unsupported type is always an error.
func NewRecord(zone *Zone, name string, data RecordData, lenient bool) (*Record, error) {
	if !data.Type.Supported() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, data.Type)
	}

	r := &Record{RecordData: data, Zone: zone, Name: name}
	if lenient {
		return r, nil
	}
	if err := validateRecord(r); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrInvalidRecord, r.FQDN(), r.Type, err)
	}
	return r, nil
}

func validateRecord(r *Record) error {
	if r.TTL < 0 {
		return fmt.Errorf("ttl must not be negative, got %d", r.TTL)
	}
	if strings.HasSuffix(r.Name, ".") {
		return fmt.Errorf("name must be relative to the zone, got %q", r.Name)
	}

	if r.Type.SingleValued() {
		if r.Value == nil {
			return fmt.Errorf("missing value")
		}
		if len(r.Values) > 0 {
			return fmt.Errorf("single-valued type cannot carry a value list")
		}
	} else if len(r.Values) == 0 {
		return fmt.Errorf("missing values")
	}

	if r.Type == RecordTypeCNAME && r.Name == "" {
		return fmt.Errorf("CNAME is not allowed at the zone apex")
	}

	for _, v := range r.AllValues() {
		if err := validateValue(r.Type, v); err != nil {
			return err
		}
	}
	return nil
}

// validateValue checks that the value shape matches the record type and
// catches obvious content mismatches. It is not exhaustive.
func validateValue(t RecordType, v Value) error {
	switch t {
	case RecordTypeA, RecordTypeAAAA:
		s, ok := v.(StringValue)
		if !ok {
			return shapeError(t, v)
		}
		addr, err := netip.ParseAddr(string(s))
		if err != nil {
			return fmt.Errorf("%s value must be an IP address, got %q", t, s)
		}
		if t == RecordTypeA && !addr.Is4() {
			return fmt.Errorf("A value must be a valid IPv4 address, got %q", s)
		}
		if t == RecordTypeAAAA && !addr.Is6() {
			return fmt.Errorf("AAAA value must be a valid IPv6 address, got %q", s)
		}
	case RecordTypeCNAME, RecordTypeNS:
		s, ok := v.(StringValue)
		if !ok {
			return shapeError(t, v)
		}
		if !strings.HasSuffix(string(s), ".") {
			return fmt.Errorf("%s value must be fully qualified, got %q", t, s)
		}
	case RecordTypeTXT:
		s, ok := v.(StringValue)
		if !ok {
			return shapeError(t, v)
		}
		if hasUnescapedSemicolon(string(s)) {
			return fmt.Errorf("TXT value has unescaped ';': %q", s)
		}
	case RecordTypeMX:
		mx, ok := v.(MXValue)
		if !ok {
			return shapeError(t, v)
		}
		if !strings.HasSuffix(mx.Exchange, ".") {
			return fmt.Errorf("MX exchange must be fully qualified, got %q", mx.Exchange)
		}
	case RecordTypeSRV:
		srv, ok := v.(SRVValue)
		if !ok {
			return shapeError(t, v)
		}
		if !strings.HasSuffix(srv.Target, ".") {
			return fmt.Errorf("SRV target must be fully qualified, got %q", srv.Target)
		}
	case RecordTypeCAA:
		if _, ok := v.(CAAValue); !ok {
			return shapeError(t, v)
		}
	case RecordTypeSSHFP:
		if _, ok := v.(SSHFPValue); !ok {
			return shapeError(t, v)
		}
	case RecordTypeNAPTR:
		if _, ok := v.(NAPTRValue); !ok {
			return shapeError(t, v)
		}
	case RecordTypeDS:
		if _, ok := v.(DSValue); !ok {
			return shapeError(t, v)
		}
	case RecordTypeTLSA:
		if _, ok := v.(TLSAValue); !ok {
			return shapeError(t, v)
		}
	}
	return nil
}

func shapeError(t RecordType, v Value) error {
	return fmt.Errorf("%s record cannot hold a %T value", t, v)
}

func hasUnescapedSemicolon(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ';' && (i == 0 || s[i-1] != '\\') {
			return true
		}
	}
	return false
}
