package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// BillingLock implements usecase.BillingLocker with a per-member SetNX
// key. The TTL bounds how long a crashed run can block a member; the
// version check on the member row remains the correctness guarantee.
type BillingLock struct {
	client *redis.Client
	prefix string
}

// NewBillingLock creates a new BillingLock.
func NewBillingLock(client *redis.Client) *BillingLock {
	return &BillingLock{
		client: client,
		prefix: "billing:lock:",
	}
}

// Acquire takes the member's lock, reporting false when another run
// already holds it.
func (l *BillingLock) Acquire(ctx context.Context, memberID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+memberID, "locked", ttl).Result()
}

// Release drops the member's lock. Releasing an expired or never-held
// lock is harmless.
func (l *BillingLock) Release(ctx context.Context, memberID string) error {
	return l.client.Del(ctx, l.prefix+memberID).Err()
}
