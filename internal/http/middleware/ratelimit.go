package middleware

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

const localCacheSize = 10_000

// localLimiter is a token bucket per key, used when Redis is not configured.
// Idle keys fall out of the cache after the window passes.
type localLimiter struct {
	visitors *lru.LRU[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newLocalLimiter(maxRequests int, window time.Duration) *localLimiter {
	if maxRequests < 1 {
		maxRequests = 1
	}
	ttl := window
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return &localLimiter{
		visitors: lru.NewLRU[string, *rate.Limiter](localCacheSize, nil, ttl),
		limit:    rate.Every(window / time.Duration(maxRequests)),
		burst:    maxRequests,
	}
}

func (l *localLimiter) allow(key string) bool {
	lim, ok := l.visitors.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.visitors.Add(key, lim)
	}
	return lim.Allow()
}
