package providers

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-logr/logr"

	"nathanbeddoewebdev/exosync/internal/dns/domain"
	"nathanbeddoewebdev/exosync/internal/services/auth"
	"nathanbeddoewebdev/exosync/internal/util"
)

// DefaultRegion is the Exoscale zone used when Options.Region is empty.
const DefaultRegion = "ch-gva-2"

// Options configures a client built by a Factory.
type Options struct {
	// Region selects the API endpoint.
	Region string

	// Dialect selects the record wire format. The zero value means DialectV2.
	Dialect domain.Dialect

	// Logger receives request-level debug output. The zero value discards.
	Logger logr.Logger
}

// Factory is a constructor function that builds a DNS Client given an auth
// store and client options.
type Factory func(store auth.Store, opts Options) (domain.Client, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a client factory to the DNS registry.
// It panics on empty name, nil factory, or duplicate registration
// (programmer errors detected at startup).
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("dns/providers: empty provider name")
	}
	if factory == nil {
		panic("dns/providers: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("dns/providers: provider %q already registered", name))
	}

	registry[normalizedName] = factory
}

// Get constructs and returns the DNS Client for the given name, using the
// store to retrieve credentials.
func Get(name string, store auth.Store, opts Options) (domain.Client, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("dns/providers: unknown provider %q", name)
	}

	return factory(store, opts)
}

// List returns the names of all registered DNS providers, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Reset clears the DNS provider registry. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
}
