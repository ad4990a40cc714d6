package payment

import (
	"sort"
	"strings"
	"sync"
)

// Registry maps payment method codes to adapters. Lookup is case-insensitive.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter; a later registration for the same method wins
func (r *Registry) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[normalizeMethod(adapter.Method())] = adapter
}

// Resolve returns the adapter for a method; ok is false for unknown methods
func (r *Registry) Resolve(method string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapter, ok := r.adapters[normalizeMethod(method)]
	return adapter, ok
}

// Methods returns the registered method codes, sorted
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.adapters))
	for method := range r.adapters {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return methods
}

func normalizeMethod(method string) string {
	return strings.ToLower(strings.TrimSpace(method))
}
