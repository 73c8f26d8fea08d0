// Package protocol implements the kernel's Protocol Registry (spec
// §4.2): named, strongly-shaped coordination singletons, replacing the
// ad-hoc shared-field pattern the teacher used for a single concern
// (internal/gossip/quorum.go's Evaluator is one mutex-guarded singleton
// reused by every caller by reference) with a name-keyed registry of
// arbitrary protocol objects.
//
// Lookup of a registered name is infallible. Lookup of an unregistered
// name fails with kernelerr.ErrUnknownProtocol — protocols are never
// created on first access (spec §4.2 "Contract").
package protocol

import (
	"sync"

	"github.com/screepskernel/kernel/internal/kernelerr"
)

// Registry holds one instance per registered protocol name, shared by
// all processes within one global lifetime.
type Registry struct {
	mu    sync.Mutex
	items map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]any)}
}

// Register installs obj under name. Re-registering the same name
// replaces the prior instance — protocol objects, like singleton
// process descriptors, support code-reload semantics.
func (r *Registry) Register(name string, obj any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[name] = obj
}

// Lookup returns the object registered under name. Returns
// kernelerr.ErrUnknownProtocol if name was never registered.
func (r *Registry) Lookup(name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	obj, ok := r.items[name]
	if !ok {
		return nil, &kernelerr.ErrUnknownProtocol{Name: name}
	}
	return obj, nil
}

// Names returns every registered protocol name, in registration order
// is not guaranteed (map iteration); callers that need stable output
// should sort.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	return names
}

// Lookup is a generic helper returning a typed protocol object,
// avoiding a type assertion at every call site.
func Lookup[T any](r *Registry, name string) (T, error) {
	var zero T
	obj, err := r.Lookup(name)
	if err != nil {
		return zero, err
	}
	typed, ok := obj.(T)
	if !ok {
		return zero, &kernelerr.ErrUnknownProtocol{Name: name}
	}
	return typed, nil
}
