package repository

import (
	"fmt"
	"sort"
	"sync"
)

// Registry tracks named repositories so wiring code can register every
// collection once and hand the rest of the program a single lookup
// dependency. Repositories of different record types share one
// registry; Lookup recovers the typed interface. All methods are safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	repos map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{repos: make(map[string]any)}
}

// Register adds a named repository to the registry. Returns an error
// for a nil repository, an empty name, or a name already taken.
func Register[K comparable, T any](reg *Registry, name string, repo Repository[K, T]) error {
	if repo == nil {
		return fmt.Errorf("cannot register nil repository")
	}
	if name == "" {
		return fmt.Errorf("cannot register repository with empty name")
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.repos[name]; exists {
		return fmt.Errorf("repository %q already registered", name)
	}

	reg.repos[name] = repo
	return nil
}

// Lookup returns the named repository. It fails when the name is
// unknown or was registered with different key or record types.
func Lookup[K comparable, T any](reg *Registry, name string) (Repository[K, T], error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	entry, exists := reg.repos[name]
	if !exists {
		return nil, fmt.Errorf("repository %q not found", name)
	}
	repo, ok := entry.(Repository[K, T])
	if !ok {
		return nil, fmt.Errorf("repository %q holds %T, not the requested type", name, entry)
	}
	return repo, nil
}

// Names returns the registered repository names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.repos))
	for name := range r.repos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
