// Package transcode converts between the provider's raw record wire format
// and normalized record data.
//
// Every supported record type has one codec: decode turns a single raw record
// into one normalized value, encode turns one normalized value back into the
// raw content (and, depending on the dialect, an out-of-band priority).
// Decode and Encode lift the codecs to whole record groups and records.
package transcode

import (
	"errors"
	"fmt"
	"iter"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
)

type codec struct {
	decode func(d domain.Dialect, raw domain.RawRecord) (domain.Value, error)
	encode func(d domain.Dialect, v domain.Value) (content string, priority *int, err error)
}

// codecs maps the closed set of supported types to their codecs.
var codecs = map[domain.RecordType]codec{
	domain.RecordTypeA:     {decode: decodeEscaped, encode: encodeEscaped},
	domain.RecordTypeAAAA:  {decode: decodeEscaped, encode: encodeEscaped},
	domain.RecordTypeTXT:   {decode: decodeEscaped, encode: encodeEscaped},
	domain.RecordTypeCNAME: {decode: decodeFQDN, encode: encodeString},
	domain.RecordTypeNS:    {decode: decodeFQDN, encode: encodeString},
	domain.RecordTypeCAA:   {decode: decodeCAA, encode: encodeCAA},
	domain.RecordTypeMX:    {decode: decodeMX, encode: encodeMX},
	domain.RecordTypeSRV:   {decode: decodeSRV, encode: encodeSRV},
	domain.RecordTypeSSHFP: {decode: decodeSSHFP, encode: encodeSSHFP},
	domain.RecordTypeNAPTR: {decode: decodeNAPTR, encode: encodeNAPTR},
	domain.RecordTypeDS:    {decode: decodeDS, encode: encodeDS},
	domain.RecordTypeTLSA:  {decode: decodeTLSA, encode: encodeTLSA},
}

// Supports reports whether t has a codec.
func Supports(t domain.RecordType) bool {
	_, ok := codecs[t]
	return ok
}

// Group is the set of raw records sharing one (name, type) within a zone.
type Group struct {
	// Name is the normalized relative name; "" is the apex.
	Name    string
	Type    domain.RecordType
	Records []domain.RawRecord
}

// GroupRecords collects raw records into (name, type) groups. Groups appear
// in the order their first record appears, and records keep their relative
// order inside a group.
func GroupRecords(raw []domain.RawRecord) []Group {
	type key struct {
		name string
		typ  domain.RecordType
	}

	index := make(map[key]int)
	var groups []Group
	for _, r := range raw {
		k := key{name: domain.RelativeName(r.Name), typ: r.Type}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Name: k.name, Type: k.typ})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	return groups
}

// Decode turns a non-empty group of raw records of one type into normalized
// record data. The TTL is taken from the first record. A record whose content
// does not fit its type's grammar fails with a *domain.MalformedRecordError.
func Decode(d domain.Dialect, zone string, group []domain.RawRecord) (domain.RecordData, error) {
	if len(group) == 0 {
		return domain.RecordData{}, errors.New("transcode: empty record group")
	}

	t := group[0].Type
	c, ok := codecs[t]
	if !ok {
		return domain.RecordData{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, t)
	}

	data := domain.RecordData{Type: t, TTL: group[0].TTL}
	for _, raw := range group {
		v, err := c.decode(d, raw)
		if err != nil {
			return domain.RecordData{}, &domain.MalformedRecordError{
				Zone:     zone,
				RecordID: raw.ID,
				Type:     raw.Type,
				Content:  raw.Content,
				Reason:   err.Error(),
			}
		}
		if t.SingleValued() {
			data.Value = v
			break
		}
		data.Values = append(data.Values, v)
	}
	return data, nil
}

// Encode expands r into one raw parameter set per value, in value order.
// The apex is named domain.ApexSentinel; callers translate it to the
// provider's own spelling. Iteration stops at the first encoding error.
func Encode(d domain.Dialect, r *domain.Record) iter.Seq2[domain.CreateRecordOpts, error] {
	return func(yield func(domain.CreateRecordOpts, error) bool) {
		c, ok := codecs[r.Type]
		if !ok {
			yield(domain.CreateRecordOpts{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, r.Type))
			return
		}

		for _, v := range r.AllValues() {
			content, priority, err := c.encode(d, v)
			if err != nil {
				yield(domain.CreateRecordOpts{}, fmt.Errorf("transcode: %s %s: %w", r.FQDN(), r.Type, err))
				return
			}
			opts := domain.CreateRecordOpts{
				Name:     domain.RawName(r.Name),
				Type:     r.Type,
				TTL:      r.TTL,
				Content:  content,
				Priority: priority,
			}
			if !yield(opts, nil) {
				return
			}
		}
	}
}
