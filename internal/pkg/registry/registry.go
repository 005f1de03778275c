// Package registry provides the type-keyed handler table both dispatchers use.
package registry

import "sync"

// Entry is one registration
type Entry[K ~string, H any] struct {
	Type    K
	Handler H
}

// Registry maps a type tag to a handler. The first registration of a type
// wins and registration order is kept. Safe for concurrent use.
type Registry[K ~string, H any] struct {
	mu      sync.RWMutex
	entries []Entry[K, H]
	index   map[K]int
}

// New creates an empty registry
func New[K ~string, H any]() *Registry[K, H] {
	return &Registry[K, H]{index: make(map[K]int)}
}

// Register adds handler for t. It reports false, and keeps the existing
// handler, when t is already registered.
func (r *Registry[K, H]) Register(t K, handler H) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[t]; ok {
		return false
	}
	r.index[t] = len(r.entries)
	r.entries = append(r.entries, Entry[K, H]{Type: t, Handler: handler})
	return true
}

// Lookup returns the handler for t
func (r *Registry[K, H]) Lookup(t K) (H, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[t]
	if !ok {
		var zero H
		return zero, false
	}
	return r.entries[i].Handler, true
}

// Entries returns a snapshot in registration order
func (r *Registry[K, H]) Entries() []Entry[K, H] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]Entry[K, H](nil), r.entries...)
}

// Types returns the registered types in registration order
func (r *Registry[K, H]) Types() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]K, 0, len(r.entries))
	for _, e := range r.entries {
		types = append(types, e.Type)
	}
	return types
}
