package ingest

import (
	"context"
	"sync"
	"time"
)

// fetchBucket is a token-bucket rate limiter with continuous refill,
// adapted from the trading client's per-endpoint buckets down to a single
// bucket guarding repeated capture-host fetches during import.
type fetchBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

func newFetchBucket(capacity, ratePerSecond float64) *fetchBucket {
	return &fetchBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// wait blocks until a token is available or ctx is cancelled.
func (b *fetchBucket) wait(ctx context.Context) error {
	for {
		b.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(b.lastTime).Seconds()
		b.tokens += elapsed * b.rate
		if b.tokens > b.capacity {
			b.tokens = b.capacity
		}
		b.lastTime = now

		if b.tokens >= 1 {
			b.tokens--
			b.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}
