package memory

import (
	"context"
	"slices"
	"sync"

	"quizforge/internal/domain"
)

// RunRegistry is an in-memory implementation of app.RunRegistry.
type RunRegistry struct {
	mu       sync.RWMutex
	holder   string
	statuses map[string]domain.RunStatus
	last     string
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{
		statuses: make(map[string]domain.RunStatus),
	}
}

func (r *RunRegistry) TryAcquire(_ context.Context, runID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.holder != "" {
		return false, nil
	}
	r.holder = runID
	return true, nil
}

// Release frees the lock only if runID still holds it.
func (r *RunRegistry) Release(_ context.Context, runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.holder == runID {
		r.holder = ""
	}
	return nil
}

func (r *RunRegistry) SaveStatus(_ context.Context, status domain.RunStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	status.Degraded = slices.Clone(status.Degraded)
	r.statuses[status.RunID] = status
	r.last = status.RunID
	return nil
}

func (r *RunRegistry) Status(_ context.Context, runID string) (domain.RunStatus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.statuses[runID]
	if !ok {
		return domain.RunStatus{}, domain.ErrRunNotFound
	}
	return st, nil
}

func (r *RunRegistry) LastStatus(ctx context.Context) (domain.RunStatus, error) {
	r.mu.RLock()
	last := r.last
	r.mu.RUnlock()
	if last == "" {
		return domain.RunStatus{}, domain.ErrRunNotFound
	}
	return r.Status(ctx, last)
}
