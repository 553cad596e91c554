package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/vidgrab/internal/config"
	"github.com/denisAlshanov/vidgrab/internal/utils"
)

// rateLimiter is a sliding window of request times per key.
type rateLimiter struct {
	requests map[string][]time.Time
	mu       sync.Mutex
	limit    int
	window   time.Duration
	now      func() time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// run prunes idle keys every window until ctx is done.
func (rl *rateLimiter) run(ctx context.Context) {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.prune()
		}
	}
}

func (rl *rateLimiter) prune() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for key, times := range rl.requests {
		if valid := rl.recent(times, now); len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

func (rl *rateLimiter) recent(times []time.Time, now time.Time) []time.Time {
	valid := times[:0]
	for _, t := range times {
		if now.Sub(t) <= rl.window {
			valid = append(valid, t)
		}
	}
	return valid
}

func (rl *rateLimiter) isAllowed(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	valid := rl.recent(rl.requests[key], now)
	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// RateLimitMiddleware limits requests per client IP. A non-positive limit
// disables it. The pruning goroutine stops with ctx.
func RateLimitMiddleware(ctx context.Context, cfg *config.APIConfig) gin.HandlerFunc {
	if cfg.RateLimitRequests <= 0 || cfg.RateLimitWindow <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	go limiter.run(ctx)

	return func(c *gin.Context) {
		if !limiter.isAllowed(c.ClientIP()) {
			utils.LogWarn(c.Request.Context(), "Rate limit exceeded", utils.Fields{"ip": c.ClientIP()})
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":      utils.NewRateLimitError(),
				"alerts":     []string{},
				"request_id": c.GetString("request_id"),
				"timestamp":  time.Now().Format(time.RFC3339),
			})
			return
		}
		c.Next()
	}
}
