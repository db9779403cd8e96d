package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another process holds the lock
var ErrLocked = errors.New("lock is held by another process")

// 토큰이 일치할 때만 삭제 (다른 프로세스의 락을 풀지 않음)
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// Locker serializes ledger writers across processes with SET NX PX
// ⭐ SSOT: 프로세스 간 ledger 락은 여기서만
type Locker struct {
	client *Client
}

// NewLocker creates a locker on client
func NewLocker(client *Client) *Locker {
	return &Locker{client: client}
}

// Lock is a held lock
type Lock struct {
	locker *Locker
	key    string
	token  string
}

// Acquire takes the lock named name for ttl. It returns ErrLocked when the
// lock is already held. With Redis disabled it always succeeds.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lock, error) {
	lock := &Lock{locker: l, key: l.client.key("lock", name), token: uuid.NewString()}
	if !l.client.Enabled() {
		return lock, nil
	}

	ok, err := l.client.Redis().SetNX(ctx, lock.key, lock.token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrLocked)
	}
	return lock, nil
}

// Release frees the lock if this holder still owns it
func (k *Lock) Release(ctx context.Context) error {
	if k == nil || !k.locker.client.Enabled() {
		return nil
	}
	if err := releaseScript.Run(ctx, k.locker.client.Redis(), []string{k.key}, k.token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", k.key, err)
	}
	return nil
}

// Key returns the Redis key of the lock
func (k *Lock) Key() string {
	return k.key
}
