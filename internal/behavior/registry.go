// Package behavior holds the catalog of atomic decision routines. The engine
// treats each behavior as opaque: it keeps identity and a display name, and
// leaves viability and execution to the external decision caller.
package behavior

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrDuplicateBehavior = errors.New("behavior already registered")
	ErrUnknownBehavior   = errors.New("behavior not found")
)

// ID identifies a behavior. IDs must stay stable across runs because
// persisted roles reference them.
type ID string

type Behavior struct {
	ID   ID
	Name string
}

// Spec describes a behavior to register at startup.
type Spec struct {
	ID   ID
	Name string
}

// Registry is an additive-only lookup table. It is constructed explicitly
// and passed to everything that needs it; there is no package-level instance.
type Registry struct {
	mu sync.RWMutex
	m  map[ID]Behavior
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[ID]Behavior)}
}

func (r *Registry) Register(id ID, name string) error {
	if id == "" {
		return errors.New("behavior id is required")
	}
	if name == "" {
		return errors.New("behavior name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateBehavior, id)
	}
	r.m[id] = Behavior{ID: id, Name: name}
	return nil
}

func (r *Registry) Lookup(id ID) (Behavior, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.m[id]
	if !ok {
		return Behavior{}, fmt.Errorf("%w: %s", ErrUnknownBehavior, id)
	}
	return b, nil
}

func (r *Registry) Contains(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.m[id]
	return ok
}

// IDs returns all registered ids in sorted order.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]ID, 0, len(r.m))
	for id := range r.m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.m)
}
