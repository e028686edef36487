package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const batchRunLockKey = "escalation:batch:lock"

// RunLock is a best-effort guard against overlapping scheduled batch runs.
// Correctness does not depend on it (the execution store's uniqueness
// constraint does); it only avoids redundant full scans. With no redis
// client the lock always grants.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRunLock builds a lock with the given hold TTL.
func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RunLock{client: client, ttl: ttl}
}

// TryAcquire attempts to take the lock. Returns false when another run holds
// it. Redis errors grant the lock rather than blocking escalations.
func (l *RunLock) TryAcquire(ctx context.Context, holder string) bool {
	if l.client == nil {
		return true
	}
	ok, err := l.client.SetNX(ctx, batchRunLockKey, holder, l.ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

// Release frees the lock if this holder still owns it.
func (l *RunLock) Release(ctx context.Context, holder string) {
	if l.client == nil {
		return
	}
	current, err := l.client.Get(ctx, batchRunLockKey).Result()
	if err != nil || current != holder {
		return
	}
	l.client.Del(ctx, batchRunLockKey)
}
