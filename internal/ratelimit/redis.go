package ratelimit

import (
	"context"
	"fmt"
	"time"

	"contact-service/internal/client"
)

const ledgerKeyPrefix = "contact_rate_limit:"

// RedisLedger implements the rate-limit ledger on Redis. The window is
// enforced by key expiry: an address holds its slot for exactly the
// window, and SET NX makes the check-and-record step atomic server-side,
// so the ledger stays correct across multiple service instances.
type RedisLedger struct {
	client *client.RedisClient
	window time.Duration
}

// NewRedisLedger creates a Redis-backed ledger with the given window.
func NewRedisLedger(client *client.RedisClient, window time.Duration) *RedisLedger {
	return &RedisLedger{client: client, window: window}
}

// Reserve claims the submission slot for addr. The stored value is the
// acceptance timestamp, useful when inspecting keys by hand.
func (l *RedisLedger) Reserve(ctx context.Context, addr string, now time.Time) (bool, error) {
	ok, err := l.client.SetNX(ctx, ledgerKeyPrefix+addr, now.Format(time.RFC3339Nano), l.window)
	if err != nil {
		return false, fmt.Errorf("reserve rate-limit slot: %w", err)
	}
	return ok, nil
}
