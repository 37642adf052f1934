package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrTimeout is returned when a lock cannot be obtained before the acquire timeout.
var ErrTimeout = errors.New("timeout acquiring lock")

// Locker is an exclusive lock identified by the id returned from Acquire.
type Locker interface {
	Acquire(ctx context.Context) (string, error)
	Release(ctx context.Context, lockID string) error
}

// DistributedLock implements a global exclusive lock backed by Redis.
type DistributedLock struct {
	client         *redis.Client
	lockKey        string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

// New creates a DistributedLock.
//   - key: the Redis key used for the lock (e.g. "showcase:compaction")
//   - ttl: how long the lock is held before auto-expiry (prevents deadlock)
//   - acquireTimeout: max time to wait when trying to acquire the lock
func New(client *redis.Client, key string, ttl, acquireTimeout time.Duration) *DistributedLock {
	return &DistributedLock{
		client:         client,
		lockKey:        key,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Acquire attempts to obtain the lock, blocking with exponential backoff
// until success or timeout. Returns a unique lockID used for Release.
func (l *DistributedLock) Acquire(ctx context.Context) (string, error) {
	lockID := uuid.New().String()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, l.lockKey, lockID, l.lockTTL).Result()
		if err != nil {
			return "", fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			return lockID, nil
		}

		if !time.Now().Before(deadline) {
			return "", fmt.Errorf("%w %s after %s", ErrTimeout, l.lockKey, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(backoff):
		}

		// exponential backoff, max 500ms
		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}
}

// releaseScript atomically checks that the lock value matches before deleting,
// preventing a client from releasing a lock it no longer owns.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// Release releases the lock only if it is still owned by the given lockID.
func (l *DistributedLock) Release(ctx context.Context, lockID string) error {
	_, err := releaseScript.Run(ctx, l.client, []string{l.lockKey}, lockID).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return nil
}

// LocalLock is the in-process Locker used when Redis is disabled.
type LocalLock struct {
	sem            chan string
	acquireTimeout time.Duration
}

// NewLocal creates a LocalLock. A zero acquireTimeout fails fast when held.
func NewLocal(acquireTimeout time.Duration) *LocalLock {
	return &LocalLock{sem: make(chan string, 1), acquireTimeout: acquireTimeout}
}

// Acquire obtains the lock or fails with ErrTimeout.
func (l *LocalLock) Acquire(ctx context.Context) (string, error) {
	lockID := uuid.New().String()
	select {
	case l.sem <- lockID:
		return lockID, nil
	default:
	}
	if l.acquireTimeout <= 0 {
		return "", ErrTimeout
	}

	timer := time.NewTimer(l.acquireTimeout)
	defer timer.Stop()
	select {
	case l.sem <- lockID:
		return lockID, nil
	case <-timer.C:
		return "", fmt.Errorf("%w after %s", ErrTimeout, l.acquireTimeout)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Release frees the lock when lockID still owns it.
func (l *LocalLock) Release(ctx context.Context, lockID string) error {
	select {
	case held := <-l.sem:
		if held != lockID {
			l.sem <- held
			return fmt.Errorf("release lock: not owner")
		}
		return nil
	default:
		return nil
	}
}
