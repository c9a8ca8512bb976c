// Package lock provides a Redis SET NX lock used to serialize payment
// provider callbacks for the same recharge order across instances.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrLockFailed = errors.New("could not acquire distributed lock")

// DistributedLock is a single-holder lock with an expiry so a crashed holder
// cannot wedge the key forever. The value identifies the holder; Unlock only
// deletes the key when it still owns it.
type DistributedLock struct {
	client     *redis.Client
	key        string
	value      string
	expiration time.Duration
}

func NewDistributedLock(client *redis.Client, key, value string, expiration time.Duration) *DistributedLock {
	return &DistributedLock{
		client:     client,
		key:        key,
		value:      value,
		expiration: expiration,
	}
}

// TryLock attempts a non-blocking acquisition.
func (l *DistributedLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, l.key, l.value, l.expiration).Result()
}

// Lock retries acquisition until it succeeds, the retry budget runs out or
// the context is cancelled.
func (l *DistributedLock) Lock(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i < maxRetries; i++ {
		success, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if success {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	return ErrLockFailed
}

// Unlock releases the lock. The check-and-delete runs as one Lua script so an
// expired holder cannot delete a lock that has since been re-acquired.
func (l *DistributedLock) Unlock(ctx context.Context) error {
	script := `
		if redis.call("GET", KEYS[1]) == ARGV[1] then
			return redis.call("DEL", KEYS[1])
		else
			return 0
		end
	`
	_, err := l.client.Eval(ctx, script, []string{l.key}, l.value).Result()
	return err
}

// NewCallbackLock locks one recharge order number, so two concurrent payment
// callbacks for the same order serialize instead of racing the transition.
func NewCallbackLock(client *redis.Client, orderNumber, owner string) *DistributedLock {
	key := fmt.Sprintf("recharge:callback:%s", orderNumber)
	return NewDistributedLock(client, key, owner, 10*time.Second)
}
