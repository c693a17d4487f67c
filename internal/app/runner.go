package app

import (
	"context"
	"errors"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizforge/internal/domain"
	"quizforge/internal/logger"
)

// RunRegistry abstracts where the run lock and run statuses live (in-memory, Redis, etc).
type RunRegistry interface {
	// TryAcquire takes the run lock for runID; false means another run holds it.
	TryAcquire(ctx context.Context, runID string) (bool, error)
	Release(ctx context.Context, runID string) error
	SaveStatus(ctx context.Context, status domain.RunStatus) error
	Status(ctx context.Context, runID string) (domain.RunStatus, error)
	LastStatus(ctx context.Context) (domain.RunStatus, error)
}

// Runner triggers pipeline runs, at most one at a time, and fans out their
// state transitions to subscribers.
type Runner struct {
	pipeline *Pipeline
	registry RunRegistry
	log      *logger.Logger
	now      func() time.Time
	newID    func() string

	wg          sync.WaitGroup
	mu          sync.Mutex
	current     domain.RunStatus
	subscribers map[chan domain.RunStatus]struct{}
}

func NewRunner(pipeline *Pipeline, registry RunRegistry, log *logger.Logger) *Runner {
	return NewRunnerWithClock(pipeline, registry, log, time.Now)
}

// NewRunnerWithClock is test-only for deterministic timestamps.
func NewRunnerWithClock(pipeline *Pipeline, registry RunRegistry, log *logger.Logger, now func() time.Time) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		pipeline:    pipeline,
		registry:    registry,
		log:         log,
		now:         now,
		newID:       uuid.NewString,
		current:     domain.RunStatus{State: domain.StateIdle},
		subscribers: make(map[chan domain.RunStatus]struct{}),
	}
}

// Start launches a run in the background and returns its ID. It fails with
// domain.ErrRunInProgress while another run holds the lock.
func (r *Runner) Start(ctx context.Context, req RunRequest) (string, error) {
	id, err := r.acquire(ctx, req)
	if err != nil {
		return "", err
	}
	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_, _ = r.execute(detached, id, req)
	}()
	return id, nil
}

// Run executes a run synchronously and returns its final status.
func (r *Runner) Run(ctx context.Context, req RunRequest) (domain.RunStatus, error) {
	id, err := r.acquire(ctx, req)
	if err != nil {
		return domain.RunStatus{}, err
	}
	return r.execute(ctx, id, req)
}

// Wait blocks until every background run has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Ready reports whether a final artifact is available for download.
func (r *Runner) Ready() bool {
	_, err := os.Stat(r.pipeline.FinalPath())
	return err == nil
}

func (r *Runner) FinalPath() string {
	return r.pipeline.FinalPath()
}

func (r *Runner) Status(ctx context.Context, runID string) (domain.RunStatus, error) {
	return r.registry.Status(ctx, runID)
}

// LastStatus returns the most recent run, or an idle status when none has run.
func (r *Runner) LastStatus(ctx context.Context) (domain.RunStatus, error) {
	st, err := r.registry.LastStatus(ctx)
	if errors.Is(err, domain.ErrRunNotFound) {
		return domain.RunStatus{State: domain.StateIdle}, nil
	}
	return st, err
}

// Subscribe returns a channel that receives every status change.
// The caller must invoke the returned cancel function to avoid leaks.
func (r *Runner) Subscribe() (<-chan domain.RunStatus, func()) {
	ch := make(chan domain.RunStatus, 8)

	// The initial snapshot goes in under the lock so no publish can overtake it.
	r.mu.Lock()
	ch <- cloneStatus(r.current)
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (r *Runner) acquire(ctx context.Context, req RunRequest) (string, error) {
	id := r.newID()
	ok, err := r.registry.TryAcquire(ctx, id)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrRunInProgress
	}
	// Ready reports false from here until the new run renders.
	r.pipeline.removeFinal()
	now := r.now()
	r.publish(ctx, domain.RunStatus{
		RunID:     id,
		State:     domain.StateIdle,
		Filter:    ParseFilter(req.Filter).Name,
		StartedAt: now,
		UpdatedAt: now,
	})
	return id, nil
}

func (r *Runner) execute(ctx context.Context, id string, req RunRequest) (domain.RunStatus, error) {
	log := r.log.With("run_id", id)
	defer func() {
		if err := r.registry.Release(context.WithoutCancel(ctx), id); err != nil {
			log.Warn("could not release run lock", "error", err)
		}
	}()

	log.Info("quiz run started", "filter", req.Filter, "source", req.Input.Mode)
	res, runErr := r.pipeline.Run(ctx, req, ObserverFunc(func(state domain.RunState) {
		if state.Terminal() {
			return
		}
		r.transition(ctx, func(st *domain.RunStatus) { st.State = state })
	}))

	final := r.transition(ctx, func(st *domain.RunStatus) {
		st.Counts = make(map[string]int, len(res.Counts))
		for t, n := range res.Counts {
			st.Counts[t.Tag()] = n
		}
		st.Degraded = res.Degraded
		if runErr != nil {
			st.State = domain.StateFailed
			st.Error = runErr.Error()
			return
		}
		st.State = domain.StateDone
	})
	log.Info("quiz run finished", "state", final.State, "degraded", len(final.Degraded))
	return final, runErr
}

// transition applies mutate to the current status, persists and broadcasts it.
func (r *Runner) transition(ctx context.Context, mutate func(*domain.RunStatus)) domain.RunStatus {
	r.mu.Lock()
	st := cloneStatus(r.current)
	r.mu.Unlock()

	mutate(&st)
	st.UpdatedAt = r.now()
	r.publish(ctx, st)
	return st
}

func (r *Runner) publish(ctx context.Context, st domain.RunStatus) {
	if err := r.registry.SaveStatus(ctx, st); err != nil {
		r.log.Warn("could not persist run status", "run_id", st.RunID, "error", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = st
	for ch := range r.subscribers {
		snapshot := cloneStatus(st)
		select {
		case ch <- snapshot:
		default:
			// Slow subscriber: drop the oldest update so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}

func cloneStatus(st domain.RunStatus) domain.RunStatus {
	if st.Counts != nil {
		counts := make(map[string]int, len(st.Counts))
		for k, v := range st.Counts {
			counts[k] = v
		}
		st.Counts = counts
	}
	st.Degraded = slices.Clone(st.Degraded)
	return st
}
