// Package backends provides the storage backends a tree can be created on and
// a registry to pick one by name.
package backends

import (
	"errors"
	"fmt"
	"sync"

	"github.com/brettbedarf/treefs"
	"github.com/brettbedarf/treefs/config"
)

// ErrUnknownBackend is returned when no factory is registered under a name
var ErrUnknownBackend = errors.New("unknown backend")

// Factory builds a backend from runtime config
type Factory func(cfg *config.Config) (treefs.TempBackend, error)

// Registry maps backend names to factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register ties a factory to a name. The first registration of a name wins so
// built-ins cannot be silently replaced.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return
	}
	r.factories[name] = f
}

// Get returns the factory registered under name
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return f, nil
}

// New builds the backend registered under cfg.Backend
func (r *Registry) New(cfg *config.Config) (treefs.TempBackend, error) {
	f, err := r.Get(cfg.Backend)
	if err != nil {
		return nil, err
	}
	return f(cfg)
}

// Names returns the registered backend names in no particular order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	return names
}

var defaultRegistry = NewRegistry()

// Register adds a factory to the default registry
func Register(name string, f Factory) {
	defaultRegistry.Register(name, f)
}

// Get looks a factory up in the default registry
func Get(name string) (Factory, error) {
	return defaultRegistry.Get(name)
}

// New builds cfg.Backend from the default registry
func New(cfg *config.Config) (treefs.TempBackend, error) {
	return defaultRegistry.New(cfg)
}
