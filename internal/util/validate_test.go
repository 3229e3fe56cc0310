package util

import (
	"testing"
)

func TestValidateZoneName_Valid(t *testing.T) {
	valid := []string{
		"example.com",
		"example.com.",
		"Example.COM",
		"sub.example.co.uk",
		"xn--bcher-kva.example",
		"bücher.example",
		"a-b.example",
		"123.example",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			if err := ValidateZoneName(name); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", name, err)
			}
		})
	}
}

func TestValidateZoneName_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only dot", "."},
		{"single label", "com"},
		{"empty label", "example..com"},
		{"leading hyphen", "-bad.example"},
		{"trailing hyphen", "bad-.example"},
		{"underscore", "bad_name.example"},
		{"space", "bad name.example"},
		{"long label", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateZoneName(tt.input); err == nil {
				t.Errorf("expected %q to be invalid, got nil error", tt.input)
			}
		})
	}
}
