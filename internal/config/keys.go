package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "region").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Default is the value in effect when the key is unset.
	Default string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)

	// Validate rejects values Set must not store. Nil accepts anything.
	Validate func(value string) error
}

var regionPattern = regexp.MustCompile(`^[a-z]{2}-[a-z]{3}-[0-9]+$`)

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "region",
		Description: "Exoscale zone whose API endpoint is used (e.g. ch-gva-2, de-fra-1)",
		Default:     DefaultRegion,
		Get:         func(cfg *Config) string { return cfg.Region },
		Set:         func(cfg *Config, v string) { cfg.Region = v },
		Validate: func(v string) error {
			if !regionPattern.MatchString(v) {
				return fmt.Errorf("invalid region %q (expected e.g. ch-gva-2)", v)
			}
			return nil
		},
	},
	{
		Name:        "dialect",
		Description: "Record wire format: v2 (name/content, sibling priority) or legacy (source/target)",
		Default:     DefaultDialect,
		Get:         func(cfg *Config) string { return cfg.Dialect },
		Set:         func(cfg *Config, v string) { cfg.Dialect = v },
		Validate: func(v string) error {
			_, err := domain.LookupDialect(v)
			return err
		},
	},
	{
		Name:        "log-level",
		Description: "Log verbosity: info or debug",
		Default:     DefaultLogLevel,
		Get:         func(cfg *Config) string { return cfg.LogLevel },
		Set:         func(cfg *Config, v string) { cfg.LogLevel = v },
		Validate:    oneOf("log level", "info", "debug"),
	},
	{
		Name:        "log-format",
		Description: "Log output format: console or json",
		Default:     DefaultLogFormat,
		Get:         func(cfg *Config) string { return cfg.LogFormat },
		Set:         func(cfg *Config, v string) { cfg.LogFormat = v },
		Validate:    oneOf("log format", "console", "json"),
	},
}

func oneOf(what string, allowed ...string) func(string) error {
	return func(v string) error {
		if slices.Contains(allowed, v) {
			return nil
		}
		return fmt.Errorf("invalid %s %q (valid: %s)", what, v, strings.Join(allowed, ", "))
	}
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s (default %s)\n", maxLen, k.Name, k.Description, k.Default)
	}
	return b.String()
}
