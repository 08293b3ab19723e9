package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an IP may stay silent before its bucket is
// dropped. A full bucket refills well within it, so dropping loses nothing.
const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu        sync.Mutex
	ips       map[string]*visitor
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute requests per IP per minute, with bursts of
// the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		ips:     make(map[string]*visitor),
		rate:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   perMinute,
		idleTTL: limiterIdleTTL,
		now:     time.Now,
	}
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if v, ok := rl.ips[ip]; ok {
		v.lastSeen = now
		return v.limiter
	}

	rl.sweep(now)
	v := &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst), lastSeen: now}
	rl.ips[ip] = v
	return v.limiter
}

// sweep drops idle visitors, at most once per idleTTL. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.idleTTL {
		return
	}
	for ip, v := range rl.ips {
		if now.Sub(v.lastSeen) >= rl.idleTTL {
			delete(rl.ips, ip)
		}
	}
	rl.lastSweep = now
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
