// Package providers holds provider credential metadata shared between the
// transport registry and the auth commands.
package providers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/exosync/internal/services/auth"
	"nathanbeddoewebdev/exosync/internal/util"
)

// CredentialKey describes a single credential field for a provider.
type CredentialKey struct {
	// Key is the suffix appended to the provider name to form the keychain
	// key (e.g. "apikey" gives "exoscale-apikey").
	Key string

	// Env names the environment variable that overrides the keychain.
	Env string

	// Prompt is the human-readable label shown when prompting the user.
	Prompt string

	// Secret controls whether the input should be masked.
	Secret bool
}

// CredentialSpec describes the complete credential scheme for a provider.
type CredentialSpec struct {
	// Provider is the normalized provider name (e.g. "exoscale").
	Provider string

	// DisplayName is the human-readable provider name.
	DisplayName string

	// Keys lists each credential that must be stored.
	Keys []CredentialKey
}

// KeychainKey returns the keychain key for the given CredentialKey:
// "<provider>-<key>", or just the provider name when Key is empty.
func (s CredentialSpec) KeychainKey(k CredentialKey) string {
	if k.Key == "" {
		return s.Provider
	}
	return s.Provider + "-" + k.Key
}

// Source tells where a resolved credential came from.
type Source string

const (
	SourceEnv     Source = "env"
	SourceKeyring Source = "keyring"
)

// Resolve returns the value of k: the environment variable when set, else
// the keychain entry. A missing credential yields auth.ErrTokenNotFound.
func (s CredentialSpec) Resolve(store auth.Store, k CredentialKey) (string, Source, error) {
	if k.Env != "" {
		if v := strings.TrimSpace(os.Getenv(k.Env)); v != "" {
			return v, SourceEnv, nil
		}
	}

	v, err := store.GetToken(s.KeychainKey(k))
	if err != nil {
		if errors.Is(err, auth.ErrTokenNotFound) {
			return "", "", fmt.Errorf("%s %s: %w", s.DisplayName, strings.ToLower(k.Prompt), auth.ErrTokenNotFound)
		}
		return "", "", err
	}
	return v, SourceKeyring, nil
}

// knownSpecs is the authoritative list of provider credential specs.
var knownSpecs = []CredentialSpec{
	{
		Provider:    "exoscale",
		DisplayName: "Exoscale",
		Keys: []CredentialKey{
			{Key: "apikey", Env: "EXOSCALE_API_KEY", Prompt: "API Key", Secret: false},
			{Key: "apisecret", Env: "EXOSCALE_API_SECRET", Prompt: "API Secret", Secret: true},
		},
	},
}

// Lookup returns the CredentialSpec for the given provider name,
// or nil if no spec is registered for that provider.
func Lookup(providerName string) *CredentialSpec {
	normalized := util.NormalizeKey(providerName)
	for i := range knownSpecs {
		if knownSpecs[i].Provider == normalized {
			return &knownSpecs[i]
		}
	}
	return nil
}

// All returns a copy of all registered credential specs.
func All() []CredentialSpec {
	out := make([]CredentialSpec, len(knownSpecs))
	copy(out, knownSpecs)
	return out
}
