package audit

import (
	"context"
	"sync"
)

// memoryRepository keeps a bounded ring of events for dev and tests.
type memoryRepository struct {
	mu     sync.RWMutex
	events []Event
	max    int
}

// NewMemoryRepository builds an in-memory event store that keeps at most
// MaxRecentLimit events.
func NewMemoryRepository() Repository {
	return &memoryRepository{max: MaxRecentLimit}
}

func (r *memoryRepository) Record(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	if len(r.events) > r.max {
		r.events = append(r.events[:0:0], r.events[len(r.events)-r.max:]...)
	}
	return nil
}

func (r *memoryRepository) Recent(_ context.Context, limit int) ([]Event, error) {
	limit = clampLimit(limit)
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit > len(r.events) {
		limit = len(r.events)
	}
	out := make([]Event, 0, limit)
	for i := len(r.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.events[i])
	}
	return out, nil
}
