package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepository is an in-memory Repository used when no database is
// configured and in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	routes map[string]SavedRoute
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{routes: make(map[string]SavedRoute)}
}

// List returns saved routes, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]SavedRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	routes := make([]SavedRoute, 0, len(r.routes))
	for _, route := range r.routes {
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool {
		return routes[i].SavedAt.After(routes[j].SavedAt)
	})

	if len(routes) > MaxEntries {
		routes = routes[:MaxEntries]
	}
	return routes, nil
}

// Get returns a single saved route by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (*SavedRoute, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[id]
	if !ok {
		return nil, ErrRouteNotFound
	}
	return &route, nil
}

// Save creates or updates a route.
func (r *MemoryRepository) Save(_ context.Context, route *SavedRoute) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[route.ID] = *route
	return nil
}

// Delete removes a route by ID.
func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.routes[id]; !ok {
		return ErrRouteNotFound
	}
	delete(r.routes, id)
	return nil
}

// Clear removes all saved routes.
func (r *MemoryRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = make(map[string]SavedRoute)
	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
