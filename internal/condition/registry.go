package condition

import (
	"sync"

	"autobid/internal/logger"
)

// Registry holds the condition handlers known to this process. Handlers are
// registered once at startup; the slice order is the modifier chain order.
type Registry struct {
	mu     sync.RWMutex
	order  []Handler
	byName map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Handler)}
}

// Register adds a handler. Re-registering a name replaces the handler in
// place, keeping its original chain position.
func (r *Registry) Register(h Handler) {
	if h == nil {
		return
	}
	name := h.Name()
	if name == "" {
		logger.Warnf("condition registry: handler with empty name ignored")
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		for i, cur := range r.order {
			if cur.Name() == name {
				r.order[i] = h
				break
			}
		}
	} else {
		r.order = append(r.order, h)
	}
	r.byName[name] = h
}

// Handlers returns the handlers in registration order.
func (r *Registry) Handlers() []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Handler, len(r.order))
	copy(out, r.order)
	return out
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byName[name]
	return h, ok
}

// Names returns the registered names in chain order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.order))
	for _, h := range r.order {
		out = append(out, h.Name())
	}
	return out
}
