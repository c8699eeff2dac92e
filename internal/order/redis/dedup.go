package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Stripe retries webhook deliveries for up to three days; keys older than
// that can never collide with a retry.
const dedupTTL = 72 * time.Hour

// Dedup records which Stripe event IDs have already been accepted so retried
// deliveries can be dropped before reconciliation.
type Dedup struct {
	Client *redis.Client
}

func NewDedup(client *redis.Client) *Dedup {
	return &Dedup{Client: client}
}

// AcquireEventLock returns true when this is the first delivery of the
// event. SetNX makes the claim atomic across concurrent deliveries.
func (d *Dedup) AcquireEventLock(ctx context.Context, eventID string) (bool, error) {
	key := "stripe_event:" + eventID
	return d.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), dedupTTL).Result()
}

// ReleaseEventLock drops the claim so a failed delivery can be retried.
func (d *Dedup) ReleaseEventLock(ctx context.Context, eventID string) error {
	return d.Client.Del(ctx, "stripe_event:"+eventID).Err()
}
