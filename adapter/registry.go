package adapter

import (
	"cmp"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/polyfrost/go-oneconfig/debug"
)

// Registry maps exact Go types to their adapters.
//
// Registration is first-wins: registering a second adapter for a type
// that already has one is rejected with a warning. Lookups never fall
// back to interfaces or underlying types.
type Registry struct {
	mu       sync.RWMutex
	adapters map[reflect.Type]Adapter
	log      *slog.Logger
}

type Option func(*Registry)

// WithLogger sets the logger used for registration warnings.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		adapters: make(map[reflect.Type]Adapter),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a. It returns false, logging a warning, if an adapter for
// a.Type() is already registered.
func (r *Registry) Register(a Adapter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	typ := a.Type()
	if _, exists := r.adapters[typ]; exists {
		r.log.Warn("adapter already registered, ignoring", "type", typ.String())
		return false
	}
	r.adapters[typ] = a
	if debug.Adapter() {
		debug.Logf("registered adapter for %s\n", typ)
	}
	return true
}

// Unregister removes the adapter registered for a.Type(). It returns
// false, logging a warning, if there is none.
func (r *Registry) Unregister(a Adapter) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	typ := a.Type()
	if _, exists := r.adapters[typ]; !exists {
		r.log.Warn("no adapter registered, nothing to unregister", "type", typ.String())
		return false
	}
	delete(r.adapters, typ)
	return true
}

// Lookup returns the adapter for exactly typ.
func (r *Registry) Lookup(typ reflect.Type) (Adapter, bool) {
	if r == nil || typ == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.adapters[typ]
	return a, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.adapters)
}

// Types returns the registered types ordered by name.
func (r *Registry) Types() []reflect.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]reflect.Type, 0, len(r.adapters))
	for typ := range r.adapters {
		res = append(res, typ)
	}
	slices.SortFunc(res, func(a, b reflect.Type) int {
		return cmp.Compare(a.String(), b.String())
	})
	return res
}
