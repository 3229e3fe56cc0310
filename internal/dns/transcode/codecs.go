package transcode

import (
	"fmt"
	"strconv"
	"strings"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/util"
)

// --- Field helpers ---

// fields splits content on single spaces into exactly n fields; the last
// field keeps any remaining text.
func fields(content string, n int) ([]string, error) {
	parts := strings.SplitN(content, " ", n)
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d space-separated fields, got %d", n, len(parts))
	}
	return parts, nil
}

// atoi parses a numeric sub-field, naming it in the error.
func atoi(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s %q is not an integer", name, s)
	}
	return n, nil
}

// splitQuoted splits content on spaces that are outside double quotes.
// Quotes are kept in the returned tokens.
func splitQuoted(content string) []string {
	var (
		tokens  []string
		b       strings.Builder
		quoted  bool
		escaped bool
	)
	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && quoted:
			escaped = true
		case ch == '"':
			quoted = !quoted
		case ch == ' ' && !quoted:
			if b.Len() > 0 {
				tokens = append(tokens, b.String())
				b.Reset()
			}
			continue
		}
		b.WriteByte(ch)
	}
	if b.Len() > 0 {
		tokens = append(tokens, b.String())
	}
	return tokens
}

func unquote(s string) string {
	return strings.TrimSuffix(strings.TrimPrefix(s, `"`), `"`)
}

func priorityOf(raw domain.RawRecord) (int, error) {
	if raw.Priority == nil {
		return 0, fmt.Errorf("missing priority")
	}
	return *raw.Priority, nil
}

func intPtr(n int) *int { return &n }

func wrongShape(want string, v domain.Value) error {
	return fmt.Errorf("expected %s value, got %T", want, v)
}

// --- A, AAAA, TXT ---

// Values of these types hold ';' escaped as '\;' on the normalized side.

func decodeEscaped(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	return domain.StringValue(strings.ReplaceAll(raw.Content, ";", `\;`)), nil
}

func encodeEscaped(_ domain.Dialect, v domain.Value) (string, *int, error) {
	s, ok := v.(domain.StringValue)
	if !ok {
		return "", nil, wrongShape("string", v)
	}
	return strings.ReplaceAll(string(s), `\;`, ";"), nil, nil
}

// --- CNAME, NS ---

func decodeFQDN(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	if raw.Content == "" {
		return nil, fmt.Errorf("empty target")
	}
	return domain.StringValue(util.EnsureFQDN(raw.Content)), nil
}

func encodeString(_ domain.Dialect, v domain.Value) (string, *int, error) {
	s, ok := v.(domain.StringValue)
	if !ok {
		return "", nil, wrongShape("string", v)
	}
	return string(s), nil, nil
}

// --- CAA: flags tag "value" ---

func decodeCAA(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	f, err := fields(raw.Content, 3)
	if err != nil {
		return nil, err
	}
	flags, err := atoi("flags", f[0])
	if err != nil {
		return nil, err
	}
	return domain.CAAValue{
		Flags: flags,
		Tag:   f[1],
		Value: strings.ReplaceAll(f[2], `"`, ""),
	}, nil
}

func encodeCAA(_ domain.Dialect, v domain.Value) (string, *int, error) {
	caa, ok := v.(domain.CAAValue)
	if !ok {
		return "", nil, wrongShape("CAA", v)
	}
	return fmt.Sprintf(`%d %s "%s"`, caa.Flags, caa.Tag, caa.Value), nil, nil
}

// --- MX: [preference] exchange ---

func decodeMX(d domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	if d.PriorityEmbedded {
		f, err := fields(raw.Content, 2)
		if err != nil {
			return nil, err
		}
		pref, err := atoi("preference", f[0])
		if err != nil {
			return nil, err
		}
		return domain.MXValue{Preference: pref, Exchange: util.EnsureFQDN(f[1])}, nil
	}

	pref, err := priorityOf(raw)
	if err != nil {
		return nil, err
	}
	if raw.Content == "" {
		return nil, fmt.Errorf("empty exchange")
	}
	return domain.MXValue{Preference: pref, Exchange: util.EnsureFQDN(raw.Content)}, nil
}

func encodeMX(d domain.Dialect, v domain.Value) (string, *int, error) {
	mx, ok := v.(domain.MXValue)
	if !ok {
		return "", nil, wrongShape("MX", v)
	}
	if d.PriorityEmbedded {
		return fmt.Sprintf("%d %s", mx.Preference, mx.Exchange), nil, nil
	}
	return mx.Exchange, intPtr(mx.Preference), nil
}

// --- SRV: [priority] weight port target ---

func decodeSRV(d domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	var (
		priority int
		rest     []string
		err      error
	)
	if d.PriorityEmbedded {
		f, err := fields(raw.Content, 4)
		if err != nil {
			return nil, err
		}
		if priority, err = atoi("priority", f[0]); err != nil {
			return nil, err
		}
		rest = f[1:]
	} else {
		if priority, err = priorityOf(raw); err != nil {
			return nil, err
		}
		if rest, err = fields(raw.Content, 3); err != nil {
			return nil, err
		}
	}

	weight, err := atoi("weight", rest[0])
	if err != nil {
		return nil, err
	}
	port, err := atoi("port", rest[1])
	if err != nil {
		return nil, err
	}
	return domain.SRVValue{
		Priority: priority,
		Weight:   weight,
		Port:     port,
		Target:   util.EnsureFQDN(rest[2]),
	}, nil
}

func encodeSRV(d domain.Dialect, v domain.Value) (string, *int, error) {
	srv, ok := v.(domain.SRVValue)
	if !ok {
		return "", nil, wrongShape("SRV", v)
	}
	if d.PriorityEmbedded {
		return fmt.Sprintf("%d %d %d %s", srv.Priority, srv.Weight, srv.Port, srv.Target), nil, nil
	}
	return fmt.Sprintf("%d %d %s", srv.Weight, srv.Port, srv.Target), intPtr(srv.Priority), nil
}

// --- SSHFP: algorithm fingerprint_type fingerprint ---

func decodeSSHFP(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	f, err := fields(raw.Content, 3)
	if err != nil {
		return nil, err
	}
	alg, err := atoi("algorithm", f[0])
	if err != nil {
		return nil, err
	}
	fpType, err := atoi("fingerprint type", f[1])
	if err != nil {
		return nil, err
	}
	return domain.SSHFPValue{
		Algorithm:       alg,
		FingerprintType: fpType,
		Fingerprint:     strings.ToLower(f[2]),
	}, nil
}

func encodeSSHFP(_ domain.Dialect, v domain.Value) (string, *int, error) {
	fp, ok := v.(domain.SSHFPValue)
	if !ok {
		return "", nil, wrongShape("SSHFP", v)
	}
	return fmt.Sprintf("%d %d %s", fp.Algorithm, fp.FingerprintType, fp.Fingerprint), nil, nil
}

// --- NAPTR: order preference "flags" "service" "regexp" replacement ---

func decodeNAPTR(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	f := splitQuoted(raw.Content)
	if len(f) != 6 {
		return nil, fmt.Errorf("expected 6 fields, got %d", len(f))
	}
	order, err := atoi("order", f[0])
	if err != nil {
		return nil, err
	}
	pref, err := atoi("preference", f[1])
	if err != nil {
		return nil, err
	}
	return domain.NAPTRValue{
		Order:       order,
		Preference:  pref,
		Flags:       strings.ToUpper(unquote(f[2])),
		Service:     unquote(f[3]),
		Regexp:      unquote(f[4]),
		Replacement: unquote(f[5]),
	}, nil
}

func encodeNAPTR(_ domain.Dialect, v domain.Value) (string, *int, error) {
	n, ok := v.(domain.NAPTRValue)
	if !ok {
		return "", nil, wrongShape("NAPTR", v)
	}
	return fmt.Sprintf(`%d %d "%s" "%s" "%s" %s`,
		n.Order, n.Preference, strings.ToLower(n.Flags), n.Service, n.Regexp, n.Replacement), nil, nil
}

// --- DS: key_tag algorithm digest_type digest ---

func decodeDS(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	f, err := fields(raw.Content, 4)
	if err != nil {
		return nil, err
	}
	keyTag, err := atoi("key tag", f[0])
	if err != nil {
		return nil, err
	}
	alg, err := atoi("algorithm", f[1])
	if err != nil {
		return nil, err
	}
	digestType, err := atoi("digest type", f[2])
	if err != nil {
		return nil, err
	}
	return domain.DSValue{KeyTag: keyTag, Algorithm: alg, DigestType: digestType, Digest: f[3]}, nil
}

func encodeDS(_ domain.Dialect, v domain.Value) (string, *int, error) {
	ds, ok := v.(domain.DSValue)
	if !ok {
		return "", nil, wrongShape("DS", v)
	}
	return fmt.Sprintf("%d %d %d %s", ds.KeyTag, ds.Algorithm, ds.DigestType, ds.Digest), nil, nil
}

// --- TLSA: usage selector matching_type data ---

func decodeTLSA(_ domain.Dialect, raw domain.RawRecord) (domain.Value, error) {
	f, err := fields(raw.Content, 4)
	if err != nil {
		return nil, err
	}
	usage, err := atoi("certificate usage", f[0])
	if err != nil {
		return nil, err
	}
	selector, err := atoi("selector", f[1])
	if err != nil {
		return nil, err
	}
	matching, err := atoi("matching type", f[2])
	if err != nil {
		return nil, err
	}
	return domain.TLSAValue{
		CertificateUsage:           usage,
		Selector:                   selector,
		MatchingType:               matching,
		CertificateAssociationData: f[3],
	}, nil
}

func encodeTLSA(_ domain.Dialect, v domain.Value) (string, *int, error) {
	t, ok := v.(domain.TLSAValue)
	if !ok {
		return "", nil, wrongShape("TLSA", v)
	}
	return fmt.Sprintf("%d %d %d %s", t.CertificateUsage, t.Selector, t.MatchingType, t.CertificateAssociationData), nil, nil
}
