package backend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/ggplay"
)

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// Register registers an engine factory under name.
// It is called from init functions in engine packages. A later
// registration with the same name replaces the earlier one.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes an engine from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered engine names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether an engine with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Open creates the named engine and attaches the package logger to it.
// There is no fallback: if the engine fails to start, its error is
// returned and no other engine is tried.
func Open(name string) (ggplay.Resampler, error) {
	registryMu.RLock()
	factory, ok := factories[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrBackendNotAvailable, name, Available())
	}

	r, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", name, err)
	}
	ggplay.AttachLogger(r)
	return r, nil
}
