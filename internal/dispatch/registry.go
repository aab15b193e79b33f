package dispatch

import (
	"sort"
	"sync"
)

// Registry maps handler reference names to registered invocables. The same
// name may carry several invocables; all of them attempt on dispatch.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Invocable
}

// NewRegistry returns an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Invocable)}
}

// Register adds an invocable under a handler reference name.
func (r *Registry) Register(name string, h Invocable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = append(r.handlers[name], h)
}

// Lookup returns a copy of the invocables registered under name.
func (r *Registry) Lookup(name string) []Invocable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	registered := r.handlers[name]
	if len(registered) == 0 {
		return nil
	}
	out := make([]Invocable, len(registered))
	copy(out, registered)
	return out
}

// Has reports whether any invocable is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[name]) > 0
}

// Names returns all registered handler reference names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
