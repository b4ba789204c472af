package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

// KeyFunc picks the identity a request is counted against.
type KeyFunc func(c *gin.Context) string

// ByIP counts requests per client address.
func ByIP(c *gin.Context) string { return c.ClientIP() }

// ByUser counts requests per signed-in user, falling back to the client
// address before authentication.
func ByUser(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return "user:" + u.ID
	}
	return c.ClientIP()
}

// RateLimiter builds fixed-window limits on Redis INCR/EXPIRE. Without a
// client every limit uses an in-process token bucket instead.
type RateLimiter struct {
	client *redis.Client
}

// NewRateLimiter accepts a nil client.
func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Limit allows maxRequests per window for each key under the given name.
// key format: rl:<name>:<window_seconds>:<identifier>
func (rl *RateLimiter) Limit(name string, maxRequests int, window time.Duration, key KeyFunc) gin.HandlerFunc {
	if rl.client == nil {
		local := newLocalLimiter(maxRequests, window)
		return func(c *gin.Context) {
			if !local.allow(key(c)) {
				reject(c, name, window)
				return
			}
			RLRequests.WithLabelValues(name).Inc()
			c.Next()
		}
	}

	prefix := "rl:" + name + ":" + strconv.FormatInt(int64(window.Seconds()), 10) + ":"
	return func(c *gin.Context) {
		k := prefix + key(c)
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		val, err := rl.client.Incr(ctx, k).Result()
		if err != nil {
			// fail-open, the limiter must not take the API down
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			rl.client.Expire(ctx, k, window)
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

		if val > int64(maxRequests) {
			reject(c, name, window)
			return
		}
		RLRequests.WithLabelValues(name).Inc()
		c.Next()
	}
}

func reject(c *gin.Context, name string, window time.Duration) {
	RLBlocked.WithLabelValues(name).Inc()
	c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
}
