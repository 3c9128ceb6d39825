package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryLedgerReserve(t *testing.T) {
	ledger := NewMemoryLedger(15*time.Second, zap.NewNop())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ok, err := ledger.Reserve(context.Background(), "203.0.113.7", base)
	require.NoError(t, err)
	assert.True(t, ok)

	// Inside the window the same address is denied.
	ok, err = ledger.Reserve(context.Background(), "203.0.113.7", base.Add(14*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	// The denial did not refresh the stored timestamp.
	ok, err = ledger.Reserve(context.Background(), "203.0.113.7", base.Add(15*time.Second))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLedgerIsolatesAddresses(t *testing.T) {
	ledger := NewMemoryLedger(15*time.Second, zap.NewNop())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ok, err := ledger.Reserve(context.Background(), "203.0.113.7", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.Reserve(context.Background(), "198.51.100.4", now)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLedgerSweep(t *testing.T) {
	ledger := NewMemoryLedger(15*time.Second, zap.NewNop())
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		ok, err := ledger.Reserve(context.Background(), fmt.Sprintf("203.0.113.%d", i), base)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := ledger.Reserve(context.Background(), "198.51.100.4", base.Add(10*time.Second))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 11, ledger.Len())

	// At base+15s the first batch has aged out, the late entry has not.
	assert.Equal(t, 10, ledger.Sweep(base.Add(15*time.Second)))
	assert.Equal(t, 1, ledger.Len())

	assert.Equal(t, 1, ledger.Sweep(base.Add(time.Minute)))
	assert.Zero(t, ledger.Len())
}

func TestMemoryLedgerConcurrentReserve(t *testing.T) {
	ledger := NewMemoryLedger(15*time.Second, zap.NewNop())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	const n = 64
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Reserve(context.Background(), "203.0.113.7", now)
			require.NoError(t, err)
			if ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, allowed)
}

func TestMemoryLedgerRunStopsOnCancel(t *testing.T) {
	ledger := NewMemoryLedger(time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ledger.Run(ctx, time.Millisecond)
	}()

	ok, err := ledger.Reserve(ctx, "203.0.113.7", time.Now())
	require.NoError(t, err)
	require.True(t, ok)

	// The sweep loop eventually evicts the expired entry.
	assert.Eventually(t, func() bool {
		return ledger.Len() == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweep loop did not stop after cancellation")
	}
}
