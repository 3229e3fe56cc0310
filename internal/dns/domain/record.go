package domain

import (
	"fmt"
	"slices"
)

// RecordType represents a DNS record type.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCAA   RecordType = "CAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeDS    RecordType = "DS"
	RecordTypeMX    RecordType = "MX"
	RecordTypeNAPTR RecordType = "NAPTR"
	RecordTypeNS    RecordType = "NS"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeSSHFP RecordType = "SSHFP"
	RecordTypeTLSA  RecordType = "TLSA"
	RecordTypeTXT   RecordType = "TXT"
)

// SupportedTypes is the closed set of record types the adapter can
// transcode, in a stable order.
var SupportedTypes = []RecordType{
	RecordTypeA,
	RecordTypeAAAA,
	RecordTypeCAA,
	RecordTypeCNAME,
	RecordTypeDS,
	RecordTypeMX,
	RecordTypeNAPTR,
	RecordTypeNS,
	RecordTypeSRV,
	RecordTypeSSHFP,
	RecordTypeTLSA,
	RecordTypeTXT,
}

// Supported reports whether t is in SupportedTypes.
func (t RecordType) Supported() bool {
	return slices.Contains(SupportedTypes, t)
}

// SingleValued reports whether records of this type carry one value
// instead of a list.
func (t RecordType) SingleValued() bool {
	return t == RecordTypeCNAME
}

// RawRecord is a record as returned by the provider API.
type RawRecord struct {
	// ID is the provider-assigned record identifier.
	ID string `json:"id"`

	// Name is relative to the zone. The provider uses "." (and sometimes "")
	// for the zone apex.
	Name string `json:"name"`

	// Type is the DNS record type tag.
	Type RecordType `json:"type"`

	// TTL is the time-to-live in seconds.
	TTL int `json:"ttl"`

	// Content is the wire-encoded record data.
	Content string `json:"content"`

	// Priority is set when the provider carries it outside Content.
	Priority *int `json:"priority,omitempty"`
}

// Domain represents a DNS zone hosted by the provider.
type Domain struct {
	// ID is the provider-assigned zone identifier.
	ID string `json:"id"`

	// Name is the zone name in its unicode form, without trailing dot.
	Name string `json:"name"`
}

// Value is one normalized record value. The concrete type depends on the
// record type.
type Value interface {
	fmt.Stringer
	isValue()
}

// StringValue is the value shape of A, AAAA, CNAME, NS and TXT records.
type StringValue string

func (v StringValue) String() string { return string(v) }

// CAAValue is a CAA record value.
type CAAValue struct {
	Flags int    `yaml:"flags"`
	Tag   string `yaml:"tag"`
	Value string `yaml:"value"`
}

func (v CAAValue) String() string { return fmt.Sprintf("%d %s %q", v.Flags, v.Tag, v.Value) }

// MXValue is an MX record value.
type MXValue struct {
	Preference int    `yaml:"preference"`
	Exchange   string `yaml:"exchange"`
}

func (v MXValue) String() string { return fmt.Sprintf("%d %s", v.Preference, v.Exchange) }

// SRVValue is an SRV record value.
type SRVValue struct {
	Priority int    `yaml:"priority"`
	Weight   int    `yaml:"weight"`
	Port     int    `yaml:"port"`
	Target   string `yaml:"target"`
}

func (v SRVValue) String() string {
	return fmt.Sprintf("%d %d %d %s", v.Priority, v.Weight, v.Port, v.Target)
}

// SSHFPValue is an SSHFP record value.
type SSHFPValue struct {
	Algorithm       int    `yaml:"algorithm"`
	FingerprintType int    `yaml:"fingerprint_type"`
	Fingerprint     string `yaml:"fingerprint"`
}

func (v SSHFPValue) String() string {
	return fmt.Sprintf("%d %d %s", v.Algorithm, v.FingerprintType, v.Fingerprint)
}

// NAPTRValue is a NAPTR record value.
type NAPTRValue struct {
	Order       int    `yaml:"order"`
	Preference  int    `yaml:"preference"`
	Flags       string `yaml:"flags"`
	Service     string `yaml:"service"`
	Regexp      string `yaml:"regexp"`
	Replacement string `yaml:"replacement"`
}

func (v NAPTRValue) String() string {
	return fmt.Sprintf("%d %d %q %q %q %s", v.Order, v.Preference, v.Flags, v.Service, v.Regexp, v.Replacement)
}

// DSValue is a DS record value.
type DSValue struct {
	KeyTag     int    `yaml:"key_tag"`
	Algorithm  int    `yaml:"algorithm"`
	DigestType int    `yaml:"digest_type"`
	Digest     string `yaml:"digest"`
}

func (v DSValue) String() string {
	return fmt.Sprintf("%d %d %d %s", v.KeyTag, v.Algorithm, v.DigestType, v.Digest)
}

// TLSAValue is a TLSA record value.
type TLSAValue struct {
	CertificateUsage           int    `yaml:"certificate_usage"`
	Selector                   int    `yaml:"selector"`
	MatchingType               int    `yaml:"matching_type"`
	CertificateAssociationData string `yaml:"certificate_association_data"`
}

func (v TLSAValue) String() string {
	return fmt.Sprintf("%d %d %d %s", v.CertificateUsage, v.Selector, v.MatchingType, v.CertificateAssociationData)
}

func (StringValue) isValue() {}
func (CAAValue) isValue()    {}
func (MXValue) isValue()     {}
func (SRVValue) isValue()    {}
func (SSHFPValue) isValue()  {}
func (NAPTRValue) isValue()  {}
func (DSValue) isValue()     {}
func (TLSAValue) isValue()   {}

// RecordData is the type-tagged payload of a normalized record, as produced
// by decoding raw records and consumed by NewRecord.
type RecordData struct {
	Type RecordType
	TTL  int

	// Value is set for single-valued types (CNAME).
	Value Value

	// Values is set for list-valued types, in provider order.
	Values []Value
}

// AllValues returns Values, or Value wrapped in a slice for single-valued
// records.
func (d RecordData) AllValues() []Value {
	if d.Type.SingleValued() {
		if d.Value == nil {
			return nil
		}
		return []Value{d.Value}
	}
	return d.Values
}

// Record is a normalized, provider-agnostic DNS record. Records are not
// mutated after construction.
type Record struct {
	RecordData

	// Zone is the zone this record belongs to.
	Zone *Zone

	// Name is relative to the zone; "" denotes the apex.
	Name string
}

// FQDN returns the fully-qualified record name with trailing dot.
func (r *Record) FQDN() string {
	if r.Zone == nil {
		return r.Name
	}
	if r.Name == "" {
		return r.Zone.Name
	}
	return r.Name + "." + r.Zone.Name
}

func (r *Record) String() string {
	return fmt.Sprintf("%s %s ttl=%d %v", r.FQDN(), r.Type, r.TTL, r.AllValues())
}
