// Package zonefile reads and writes zones and change plans as YAML in the
// octoDNS layout: a mapping from relative record name ("" for the apex) to
// one record or a list of records, each with type, ttl and value(s).
package zonefile

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
)

// recordOut is the encoded layout of one record.
type recordOut struct {
	Type   string `yaml:"type"`
	TTL    int    `yaml:"ttl"`
	Value  any    `yaml:"value,omitempty"`
	Values []any  `yaml:"values,omitempty"`
}

// recordIn is the decoded layout of one record. Value and Values stay as
// nodes until the type is known.
type recordIn struct {
	Name   *string    `yaml:"name"`
	Type   string     `yaml:"type"`
	TTL    int        `yaml:"ttl"`
	Value  *yaml.Node `yaml:"value"`
	Values *yaml.Node `yaml:"values"`
}

// Encode writes the records of z to w.
func Encode(w io.Writer, z *domain.Zone) error {
	byName := map[string][]*domain.Record{}
	for _, r := range z.Records() {
		byName[r.Name] = append(byName[r.Name], r)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	slices.Sort(names)

	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range names {
		records := byName[name]
		slices.SortFunc(records, func(a, b *domain.Record) int { return cmp.Compare(a.Type, b.Type) })

		docs := make([]recordOut, len(records))
		for i, r := range records {
			docs[i] = toOut(r)
		}

		var key, value yaml.Node
		if err := key.Encode(name); err != nil {
			return fmt.Errorf("zonefile: encode name %q: %w", name, err)
		}
		var err error
		if len(docs) == 1 {
			err = value.Encode(docs[0])
		} else {
			err = value.Encode(docs)
		}
		if err != nil {
			return fmt.Errorf("zonefile: encode %q: %w", name, err)
		}
		root.Content = append(root.Content, &key, &value)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("zonefile: %w", err)
	}
	return enc.Close()
}

func toOut(r *domain.Record) recordOut {
	out := recordOut{Type: string(r.Type), TTL: r.TTL}
	if r.Type.SingleValued() {
		out.Value = r.Value
		return out
	}
	out.Values = make([]any, len(r.Values))
	for i, v := range r.Values {
		out.Values[i] = v
	}
	return out
}

// DecodeZone reads a zone file into a new zone named zoneName.
func DecodeZone(r io.Reader, zoneName string, lenient bool) (*domain.Zone, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return domain.NewZone(zoneName), nil
		}
		return nil, fmt.Errorf("zonefile: %w", err)
	}

	zone := domain.NewZone(zoneName)
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("zonefile: line %d: expected a mapping of record names", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		entries := []*yaml.Node{root.Content[i+1]}
		if root.Content[i+1].Kind == yaml.SequenceNode {
			entries = root.Content[i+1].Content
		}

		for _, n := range entries {
			var in recordIn
			if err := n.Decode(&in); err != nil {
				return nil, fmt.Errorf("zonefile: record %q: %w", name, err)
			}
			rec, err := buildRecord(zone, name, in, lenient)
			if err != nil {
				return nil, err
			}
			if err := zone.AddRecord(rec, lenient); err != nil {
				return nil, fmt.Errorf("zonefile: %w", err)
			}
		}
	}
	return zone, nil
}

// buildRecord turns a decoded entry into a record of zone.
func buildRecord(zone *domain.Zone, name string, in recordIn, lenient bool) (*domain.Record, error) {
	data, err := recordData(in)
	if err != nil {
		return nil, fmt.Errorf("zonefile: record %q: %w", name, err)
	}
	rec, err := domain.NewRecord(zone, name, data, lenient)
	if err != nil {
		return nil, fmt.Errorf("zonefile: %w", err)
	}
	return rec, nil
}

func recordData(in recordIn) (domain.RecordData, error) {
	t := domain.RecordType(strings.ToUpper(strings.TrimSpace(in.Type)))
	if t == "" {
		return domain.RecordData{}, errors.New("missing type")
	}
	if !t.Supported() {
		return domain.RecordData{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, in.Type)
	}

	data := domain.RecordData{Type: t, TTL: in.TTL}

	var nodes []*yaml.Node
	switch {
	case in.Values != nil && in.Values.Kind == yaml.SequenceNode:
		nodes = in.Values.Content
	case in.Values != nil:
		nodes = []*yaml.Node{in.Values}
	case in.Value != nil:
		nodes = []*yaml.Node{in.Value}
	}

	values := make([]domain.Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := decodeValue(t, n)
		if err != nil {
			return domain.RecordData{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		values = append(values, v)
	}

	if t.SingleValued() {
		if len(values) > 1 {
			return domain.RecordData{}, fmt.Errorf("%s takes a single value, got %d", t, len(values))
		}
		if len(values) == 1 {
			data.Value = values[0]
		}
		return data, nil
	}
	data.Values = values
	return data, nil
}

func decodeValue(t domain.RecordType, n *yaml.Node) (domain.Value, error) {
	switch t {
	case domain.RecordTypeA, domain.RecordTypeAAAA, domain.RecordTypeCNAME, domain.RecordTypeNS, domain.RecordTypeTXT:
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, err
		}
		return domain.StringValue(s), nil
	case domain.RecordTypeCAA:
		return decodeAs[domain.CAAValue](n)
	case domain.RecordTypeMX:
		return decodeAs[domain.MXValue](n)
	case domain.RecordTypeSRV:
		return decodeAs[domain.SRVValue](n)
	case domain.RecordTypeSSHFP:
		return decodeAs[domain.SSHFPValue](n)
	case domain.RecordTypeNAPTR:
		return decodeAs[domain.NAPTRValue](n)
	case domain.RecordTypeDS:
		return decodeAs[domain.DSValue](n)
	case domain.RecordTypeTLSA:
		return decodeAs[domain.TLSAValue](n)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, t)
}

func decodeAs[T domain.Value](n *yaml.Node) (domain.Value, error) {
	var v T
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping, got %q", n.Value)
	}
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
