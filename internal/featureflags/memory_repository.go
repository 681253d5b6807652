package featureflags

import (
	"context"
	"sync"
	"time"
)

// InMemoryRepository keeps flags in a map. It backs tests and lets the API
// boot without a database, at the cost of losing flag state on restart.
type InMemoryRepository struct {
	mu    sync.RWMutex
	flags map[string]*Flag
}

// NewInMemoryRepository creates an empty in-memory flag store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		flags: make(map[string]*Flag),
	}
}

// GetFlag returns the flag stored under key, or ErrFlagNotFound.
func (r *InMemoryRepository) GetFlag(_ context.Context, key string) (*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	flag, ok := r.flags[key]
	if !ok {
		return nil, ErrFlagNotFound
	}
	copied := *flag
	return &copied, nil
}

// GetAllFlags returns a snapshot of every stored flag.
func (r *InMemoryRepository) GetAllFlags(_ context.Context) (map[string]*Flag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]*Flag, len(r.flags))
	for key, flag := range r.flags {
		copied := *flag
		result[key] = &copied
	}
	return result, nil
}

// SetFlag stores or replaces a flag, stamping its update time.
func (r *InMemoryRepository) SetFlag(_ context.Context, flag *Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store(flag, time.Now())
	return nil
}

// SetFlags stores or replaces several flags with a shared update time.
func (r *InMemoryRepository) SetFlags(_ context.Context, flags []*Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, flag := range flags {
		r.store(flag, now)
	}
	return nil
}

// DeleteFlag removes a flag. Deleting an unknown key is a no-op.
func (r *InMemoryRepository) DeleteFlag(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.flags, key)
	return nil
}

// store must be called with the write lock held.
func (r *InMemoryRepository) store(flag *Flag, at time.Time) {
	flag.UpdatedAt = at
	copied := *flag
	r.flags[flag.Key] = &copied
}

var _ Repository = (*InMemoryRepository)(nil)
