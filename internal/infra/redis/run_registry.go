package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quizforge/internal/domain"
)

const (
	lockKey      = "quizforge:run:lock"
	lastRunKey   = "quizforge:run:last"
	runKeyPrefix = "quizforge:run:"
)

// releaseScript deletes the lock only when it still holds our run ID.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunRegistry keeps the run lock and run statuses in Redis so several
// processes can share one work dir.
// Lock:    SET quizforge:run:lock {runID} NX PX {lockTTL}
// Status:  HSET quizforge:run:{runID} state ... (expires after statusTTL)
// Pointer: SET quizforge:run:last {runID}
type RunRegistry struct {
	client    *redis.Client
	lockTTL   time.Duration
	statusTTL time.Duration
}

func NewRunRegistry(client *redis.Client, lockTTL, statusTTL time.Duration) *RunRegistry {
	return &RunRegistry{client: client, lockTTL: lockTTL, statusTTL: statusTTL}
}

func (r *RunRegistry) TryAcquire(ctx context.Context, runID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, lockKey, runID, r.lockTTL).Result()
	if err != nil {
		return false, fmt.Errorf("acquire run lock: %w", err)
	}
	return ok, nil
}

func (r *RunRegistry) Release(ctx context.Context, runID string) error {
	if err := releaseScript.Run(ctx, r.client, []string{lockKey}, runID).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}

func (r *RunRegistry) SaveStatus(ctx context.Context, st domain.RunStatus) error {
	counts, err := json.Marshal(st.Counts)
	if err != nil {
		return err
	}
	degraded, err := json.Marshal(st.Degraded)
	if err != nil {
		return err
	}
	key := r.runKey(st.RunID)
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, key,
		"state", string(st.State),
		"filter", st.Filter,
		"error", st.Error,
		"counts", counts,
		"degraded", degraded,
		"started_at", st.StartedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", st.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if r.statusTTL > 0 {
		pipe.Expire(ctx, key, r.statusTTL)
	}
	pipe.Set(ctx, lastRunKey, st.RunID, r.statusTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save run status: %w", err)
	}
	return nil
}

func (r *RunRegistry) Status(ctx context.Context, runID string) (domain.RunStatus, error) {
	fields, err := r.client.HGetAll(ctx, r.runKey(runID)).Result()
	if err != nil {
		return domain.RunStatus{}, fmt.Errorf("load run status: %w", err)
	}
	if len(fields) == 0 {
		return domain.RunStatus{}, domain.ErrRunNotFound
	}
	return statusFromHash(runID, fields)
}

func (r *RunRegistry) LastStatus(ctx context.Context) (domain.RunStatus, error) {
	runID, err := r.client.Get(ctx, lastRunKey).Result()
	if errors.Is(err, redis.Nil) {
		return domain.RunStatus{}, domain.ErrRunNotFound
	}
	if err != nil {
		return domain.RunStatus{}, fmt.Errorf("load last run: %w", err)
	}
	return r.Status(ctx, runID)
}

func (r *RunRegistry) runKey(runID string) string {
	return runKeyPrefix + runID
}

func statusFromHash(runID string, fields map[string]string) (domain.RunStatus, error) {
	st := domain.RunStatus{
		RunID:  runID,
		State:  domain.RunState(fields["state"]),
		Filter: fields["filter"],
		Error:  fields["error"],
	}
	if v := fields["counts"]; v != "" && v != "null" {
		if err := json.Unmarshal([]byte(v), &st.Counts); err != nil {
			return domain.RunStatus{}, fmt.Errorf("decode counts: %w", err)
		}
	}
	if v := fields["degraded"]; v != "" && v != "null" {
		if err := json.Unmarshal([]byte(v), &st.Degraded); err != nil {
			return domain.RunStatus{}, fmt.Errorf("decode degraded: %w", err)
		}
	}
	st.StartedAt, _ = time.Parse(time.RFC3339Nano, fields["started_at"])
	st.UpdatedAt, _ = time.Parse(time.RFC3339Nano, fields["updated_at"])
	return st, nil
}
