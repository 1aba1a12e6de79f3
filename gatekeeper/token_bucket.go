package gatekeeper

import (
	"sync"

	"github.com/Shiva-129/OmniTrade-system/clock"
)

// TokenBucket is a continuous-time refill rate limiter, grounded on
// rate_limiter.py's TokenBucket: refill amount is derived from elapsed
// monotonic time rather than a periodic tick, so no background goroutine
// is needed and a wall-clock jump can never manufacture a burst (refill
// is keyed off clock.NowMonotonic, never clock.NowEpoch).
type TokenBucket struct {
	mu           sync.Mutex
	rate         float64 // tokens per second
	capacity     float64
	tokens       float64
	lastUpdateUs clock.MonotonicUs
}

// NewTokenBucket returns a bucket starting full.
func NewTokenBucket(rate, capacity float64) *TokenBucket {
	return &TokenBucket{
		rate:         rate,
		capacity:     capacity,
		tokens:       capacity,
		lastUpdateUs: clock.NowMonotonic(),
	}
}

// Consume attempts to deduct n tokens after refilling for elapsed time.
// Returns true if there were enough tokens.
func (b *TokenBucket) Consume(n float64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := clock.NowMonotonic()
	deltaSeconds := float64(now.Sub(b.lastUpdateUs)) / 1_000_000.0
	b.tokens = min(b.capacity, b.tokens+deltaSeconds*b.rate)
	b.lastUpdateUs = now

	if b.tokens >= n {
		b.tokens -= n
		return true
	}
	return false
}
