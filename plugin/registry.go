package plugin

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownPlugin indicates no factory is registered for the identifier.
	ErrUnknownPlugin = errors.New("plugin: unknown plugin identifier")
	// ErrDuplicatePlugin indicates the identifier is already registered.
	ErrDuplicatePlugin = errors.New("plugin: identifier already registered")
	// ErrEmptyPluginID indicates a blank plugin identifier.
	ErrEmptyPluginID = errors.New("plugin: identifier is required")
)

// Factory constructs a fresh Renderer instance for one plugin identifier.
type Factory func() Renderer

// Resolver yields a Renderer for a plugin identifier. The tile compositor
// depends only on this capability, never on the registry's representation.
type Resolver interface {
	Resolve(id string) (Renderer, error)
}

// Registry maps plugin identifiers to factories. The host populates it at
// startup; lookups are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds id to factory. Registering an already-bound id fails with
// ErrDuplicatePlugin so hosts catch accidental double registration early.
func (r *Registry) Register(id string, factory Factory) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrEmptyPluginID
	}
	if factory == nil {
		return fmt.Errorf("plugin: nil factory for %q", id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, id)
	}
	r.factories[id] = factory
	return nil
}

// Resolve returns a new Renderer for id, or ErrUnknownPlugin.
func (r *Registry) Resolve(id string) (Renderer, error) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(id)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlugin, id)
	}
	return factory(), nil
}

// IDs returns the registered identifiers, useful for host plugin pickers.
// The tile plugin itself should be excluded by the host from the list it
// offers for tile children to avoid self-reference.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	return ids
}
