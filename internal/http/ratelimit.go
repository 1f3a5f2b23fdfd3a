package http

import (
	"sync"
	"time"

	"cashledger/internal/cache"
)

const (
	rateWindow     = time.Minute
	maxRateClients = 10000
)

// rateLimiter allows limit mutating requests per client in fixed one-minute
// windows. Idle clients age out of the bucket cache.
type rateLimiter struct {
	limit   int
	mu      sync.Mutex
	buckets *cache.LRUCache[*rateBucket]
	now     func() time.Time
}

type rateBucket struct {
	start time.Time
	count int
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		buckets: cache.NewLRUCache[*rateBucket](maxRateClients, 2*rateWindow),
		now:     time.Now,
	}
}

// allow counts a request for clientIP. When the client is over its limit it
// returns false and how long until its window resets.
func (rl *rateLimiter) allow(clientIP string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets.Get(clientIP)
	if !ok || now.Sub(b.start) >= rateWindow {
		rl.buckets.Set(clientIP, &rateBucket{start: now, count: 1})
		return true, 0
	}
	b.count++
	if b.count > rl.limit {
		return false, b.start.Add(rateWindow).Sub(now)
	}
	return true, 0
}

// ActiveClients returns the number of clients with a live window.
func (rl *rateLimiter) ActiveClients() int {
	return rl.buckets.Size()
}
