package ratelimit

import (
	"context"
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"
	"go.uber.org/zap"

	"contact-service/internal/util"
)

const shardCount = 16

type ledgerShard struct {
	mu   sync.Mutex
	last map[string]time.Time
}

// MemoryLedger is an in-process rate-limit ledger. Addresses are
// spread over murmur3-hashed shards so the check-and-record critical
// section only serializes submissions that map to the same shard.
//
// Entries outside the window are dead weight; Run sweeps them so the
// ledger stays bounded over the process lifetime.
type MemoryLedger struct {
	window time.Duration
	shards [shardCount]ledgerShard
	logger *zap.Logger

	// Pool of hash states to avoid per-request allocation.
	hasherPool sync.Pool
}

// NewMemoryLedger creates a ledger enforcing the given minimum interval
// between accepted submissions per address.
func NewMemoryLedger(window time.Duration, logger *zap.Logger) *MemoryLedger {
	l := &MemoryLedger{
		window: window,
		logger: logger,
		hasherPool: sync.Pool{
			New: func() interface{} {
				return murmur3.New64()
			},
		},
	}
	for i := range l.shards {
		l.shards[i].last = make(map[string]time.Time)
	}
	return l
}

func (l *MemoryLedger) shardFor(addr string) *ledgerShard {
	h := l.hasherPool.Get().(hash.Hash64)
	h.Reset()
	_, _ = h.Write([]byte(addr))
	sum := h.Sum64()
	l.hasherPool.Put(h)
	return &l.shards[sum%shardCount]
}

// Reserve records now for addr and returns true unless the address
// already submitted inside the window. A rejected call leaves the
// stored timestamp untouched.
func (l *MemoryLedger) Reserve(_ context.Context, addr string, now time.Time) (bool, error) {
	sh := l.shardFor(addr)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if last, ok := sh.last[addr]; ok && now.Sub(last) < l.window {
		return false, nil
	}
	sh.last[addr] = now
	return true, nil
}

// Sweep evicts every entry whose window has already elapsed and
// returns the number of evicted addresses.
func (l *MemoryLedger) Sweep(now time.Time) int {
	evicted := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		for addr, last := range sh.last {
			if now.Sub(last) >= l.window {
				delete(sh.last, addr)
				evicted++
			}
		}
		sh.mu.Unlock()
	}
	return evicted
}

// Len reports the number of tracked addresses.
func (l *MemoryLedger) Len() int {
	n := 0
	for i := range l.shards {
		sh := &l.shards[i]
		sh.mu.Lock()
		n += len(sh.last)
		sh.mu.Unlock()
	}
	return n
}

// Run sweeps the ledger at the given interval until ctx is cancelled.
func (l *MemoryLedger) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if evicted := l.Sweep(now); evicted > 0 {
				l.logger.Debug("rate-limit ledger sweep",
					util.Int("evicted", evicted),
					util.Int("remaining", l.Len()),
				)
			}
		}
	}
}
