package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"contact-service/internal/client"
	"contact-service/internal/config"
)

func newMiniredisLedger(t *testing.T, window time.Duration) (*RedisLedger, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Redis: config.RedisConfig{
			URL:      "redis://" + mr.Addr(),
			PoolSize: 10,
		},
	}
	redisClient, err := client.NewRedisClient(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { redisClient.Close() })

	return NewRedisLedger(redisClient, window), mr
}

func TestRedisLedgerReserve(t *testing.T) {
	ledger, mr := newMiniredisLedger(t, 15*time.Second)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ok, err := ledger.Reserve(context.Background(), "203.0.113.7", now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Inside the window the slot is taken.
	ok, err = ledger.Reserve(context.Background(), "203.0.113.7", now.Add(5*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	// A different address holds its own slot.
	ok, err = ledger.Reserve(context.Background(), "198.51.100.4", now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Key expiry frees the slot after the window.
	mr.FastForward(15 * time.Second)
	ok, err = ledger.Reserve(context.Background(), "203.0.113.7", now.Add(15*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLedgerStoresTimestamp(t *testing.T) {
	ledger, mr := newMiniredisLedger(t, 15*time.Second)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ok, err := ledger.Reserve(context.Background(), "203.0.113.7", now)
	require.NoError(t, err)
	require.True(t, ok)

	val, err := mr.Get(ledgerKeyPrefix + "203.0.113.7")
	require.NoError(t, err)
	assert.Equal(t, now.Format(time.RFC3339Nano), val)

	ttl := mr.TTL(ledgerKeyPrefix + "203.0.113.7")
	assert.Equal(t, 15*time.Second, ttl)
}

func TestRedisLedgerConnectionError(t *testing.T) {
	ledger, mr := newMiniredisLedger(t, 15*time.Second)
	mr.Close()

	_, err := ledger.Reserve(context.Background(), "203.0.113.7", time.Now())
	assert.Error(t, err)
}
