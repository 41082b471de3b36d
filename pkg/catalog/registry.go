package catalog

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]func(*slog.Logger) Provider)
)

// Register adds a provider factory to the registry.
// Called by provider implementations in their init() functions.
func Register(name string, factory func(*slog.Logger) Provider) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a provider factory by name.
func Get(name string) (func(*slog.Logger) Provider, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// NewProvider creates a provider for cfg.Type.
// A nil logger is replaced by a discard logger inside the provider.
func NewProvider(cfg Config, logger *slog.Logger) (Provider, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("catalog type not specified")
	}
	factory, ok := Get(cfg.Type)
	if !ok {
		return nil, &UnknownProviderError{
			Type:      cfg.Type,
			Available: ListProviders(),
		}
	}
	return factory(logger), nil
}

// ListProviders returns all registered provider names (sorted).
func ListProviders() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a provider type is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

// UnknownProviderError is returned when an unknown provider type is requested.
type UnknownProviderError struct {
	Type      string
	Available []string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown catalog type %q\nAvailable catalogs: %v\nHint: check the scheme of DB_URL or catalog_type in dbexport.yaml", e.Type, e.Available)
}
