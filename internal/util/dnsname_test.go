package util

import "testing"

func TestZoneKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"example.com", "example.com."},
		{"Example.COM.", "example.com."},
		{"  example.com  ", "example.com."},
		{"bücher.example", "xn--bcher-kva.example."},
		{"xn--bcher-kva.example.", "xn--bcher-kva.example."},
		{"", "."},
		{".", "."},
	}
	for _, tt := range tests {
		if got := ZoneKey(tt.input); got != tt.want {
			t.Errorf("ZoneKey(%q): expected %q, got %q", tt.input, tt.want, got)
		}
	}
}

func TestEnsureAndTrimFQDN(t *testing.T) {
	if got := EnsureFQDN("example.com"); got != "example.com." {
		t.Errorf("expected %q, got %q", "example.com.", got)
	}
	if got := EnsureFQDN("example.com."); got != "example.com." {
		t.Errorf("expected %q, got %q", "example.com.", got)
	}
	if got := TrimFQDN("example.com."); got != "example.com" {
		t.Errorf("expected %q, got %q", "example.com", got)
	}
}
