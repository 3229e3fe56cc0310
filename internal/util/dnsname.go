package util

import (
	"strings"

	"golang.org/x/net/idna"
)

// EnsureFQDN appends a trailing dot to name unless it already has one.
func EnsureFQDN(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

// TrimFQDN removes a single trailing dot from name.
func TrimFQDN(name string) string {
	return strings.TrimSuffix(name, ".")
}

// ZoneKey normalizes a zone name for map lookups: trimmed, lower-cased,
// converted to its ASCII (punycode) form and terminated with a dot, so that
// "Example.COM", "example.com." and "bücher.example" / "xn--bcher-kva.example."
// collide as expected.
func ZoneKey(name string) string {
	name = TrimFQDN(strings.TrimSpace(name))
	if name == "" {
		return "."
	}
	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		ascii = name
	}
	return EnsureFQDN(strings.ToLower(ascii))
}
