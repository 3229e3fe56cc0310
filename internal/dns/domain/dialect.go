package domain

import (
	"fmt"
	"strings"
)

// ApexSentinel is the raw record name the provider uses for the zone apex.
const ApexSentinel = "."

// Dialect describes the wire conventions of one provider API variant:
// which JSON fields carry the record name and content, and whether MX/SRV
// priority travels inside the content string or as a sibling field.
type Dialect struct {
	// Name identifies the dialect in configuration.
	Name string

	// NameField is the JSON field holding the relative record name.
	NameField string

	// ContentField is the JSON field holding the wire-encoded content.
	ContentField string

	// PriorityField is the JSON field holding the out-of-band priority.
	// Unused when PriorityEmbedded is true.
	PriorityField string

	// PriorityEmbedded puts the MX/SRV priority as the first space-separated
	// field of the content.
	PriorityEmbedded bool

	// ApexName is the name sent when creating a record at the zone apex.
	ApexName string
}

var (
	// DialectV2 is the current API: name/content with a sibling priority.
	DialectV2 = Dialect{
		Name:          "v2",
		NameField:     "name",
		ContentField:  "content",
		PriorityField: "priority",
		ApexName:      "",
	}

	// DialectLegacy is the older API: source/target with the priority
	// embedded in the target.
	DialectLegacy = Dialect{
		Name:             "legacy",
		NameField:        "source",
		ContentField:     "target",
		PriorityEmbedded: true,
		ApexName:         "",
	}
)

// Dialects lists the known dialects.
var Dialects = []Dialect{DialectV2, DialectLegacy}

// LookupDialect returns the dialect with the given name. An empty name
// selects DialectV2.
func LookupDialect(name string) (Dialect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return DialectV2, nil
	}
	for _, d := range Dialects {
		if d.Name == name {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("unknown dialect %q", name)
}

// IsApex reports whether a raw record name denotes the zone apex.
func IsApex(rawName string) bool {
	return rawName == ApexSentinel || rawName == ""
}

// RelativeName converts a raw record name to the normalized form, where the
// apex is "".
func RelativeName(rawName string) string {
	if IsApex(rawName) {
		return ""
	}
	return rawName
}

// RawName converts a normalized record name to the raw form, where the apex
// is ApexSentinel.
func RawName(name string) string {
	if name == "" {
		return ApexSentinel
	}
	return name
}
