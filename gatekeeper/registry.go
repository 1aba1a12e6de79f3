package gatekeeper

import (
	"context"
	"sync"
)

// Registry maps client order id to the OrderIntent first registered
// under it, enforcing idempotent submission: Register must be a no-op
// (no re-validation, no mutation, no side effect beyond the caller's own
// logging) on a duplicate id.
type Registry interface {
	// Register returns (intent, true) if this is the first registration
	// of intent.ClientOrderID, or the previously-registered intent and
	// false on a duplicate.
	Register(ctx context.Context, intent OrderIntent) (OrderIntent, bool, error)
	Get(ctx context.Context, clientOrderID string) (OrderIntent, bool, error)
}

// MemoryRegistry is a process-local Registry, grounded on
// command_registry.py's plain dict: not persisted across restarts unless
// the deployment explicitly opts into EtcdRegistry instead.
type MemoryRegistry struct {
	mu      sync.Mutex
	orders  map[string]OrderIntent
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{orders: make(map[string]OrderIntent)}
}

func (r *MemoryRegistry) Register(_ context.Context, intent OrderIntent) (OrderIntent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.orders[intent.ClientOrderID]; ok {
		return existing, false, nil
	}
	r.orders[intent.ClientOrderID] = intent
	return intent, true, nil
}

func (r *MemoryRegistry) Get(_ context.Context, clientOrderID string) (OrderIntent, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	intent, ok := r.orders[clientOrderID]
	return intent, ok, nil
}
