package render

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores renderers by name. The first registered renderer is the
// default unless SetDefault picks another.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds a renderer by its Name(). Duplicate names return an error.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("render: renderer is required")
	}
	name := strings.TrimSpace(renderer.Name())
	if name == "" {
		return fmt.Errorf("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// SetDefault selects the renderer returned by Get("").
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.renderers[name]; !ok {
		return fmt.Errorf("render: renderer %q not found", name)
	}
	r.fallback = name
	return nil
}

// Get retrieves a renderer by name; an empty name yields the default.
func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if strings.TrimSpace(name) == "" {
		name = r.fallback
	}
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("render: renderer %q not found", name)
	}
	return renderer, nil
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
