package util

import (
	"fmt"
	"strings"

	"golang.org/x/net/idna"
)

// ValidateZoneName checks that name is a usable DNS zone name:
//   - At least two labels (a zone cannot be a bare TLD)
//   - At most 253 characters in ASCII form, labels of 1 to 63 characters
//   - Only a-z, 0-9 and hyphens per label, after punycode conversion
//   - Labels must not start or end with a hyphen
//
// A single trailing dot is accepted. Unicode names are checked in their
// punycode form.
func ValidateZoneName(name string) error {
	trimmed := TrimFQDN(strings.TrimSpace(name))
	if trimmed == "" {
		return fmt.Errorf("zone name must not be empty")
	}

	ascii, err := idna.Lookup.ToASCII(trimmed)
	if err != nil {
		return fmt.Errorf("zone name %q is not a valid domain: %w", name, err)
	}
	if len(ascii) > 253 {
		return fmt.Errorf("zone name must be at most 253 characters, got %d", len(ascii))
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return fmt.Errorf("zone name %q must have at least two labels", name)
	}

	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("zone name %q contains an empty label", name)
		}
		if len(label) > 63 {
			return fmt.Errorf("label %q is longer than 63 characters", label)
		}
		for i := 0; i < len(label); i++ {
			if !isAlphanumeric(label[i]) && label[i] != '-' {
				return fmt.Errorf("zone name %q contains invalid character %q (only a-z, 0-9 and hyphens are allowed)", name, string(label[i]))
			}
		}
		if label[0] == '-' || label[len(label)-1] == '-' {
			return fmt.Errorf("label %q must not start or end with a hyphen", label)
		}
	}

	return nil
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
