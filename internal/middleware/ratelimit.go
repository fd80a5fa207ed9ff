package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/meminc/powsysmon/internal/apierr"
)

const staleClientAfter = 5 * time.Minute

// RateLimiter throttles requests per client IP with a token bucket each.
// Entries for idle clients are dropped opportunistically on new-client
// registration, so the map stays proportional to the active client set.
type RateLimiter struct {
	perSecond rate.Limit
	burst     int

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter builds a limiter from a requests-per-minute budget. A
// non-positive budget returns nil, which Handler treats as unlimited.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		perSecond: rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:     burst,
		buckets:   make(map[string]*bucket),
	}
}

// Handler returns the gin middleware. Rejections are raised as typed errors so
// the dispatcher shapes the 429 like every other failure.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		if !r.allow(c.ClientIP()) {
			_ = c.Error(apierr.RateLimit("Too many requests. Please slow down."))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) allow(clientIP string) bool {
	now := time.Now()

	r.mu.Lock()
	b, ok := r.buckets[clientIP]
	if !ok {
		for ip, old := range r.buckets {
			if now.Sub(old.lastSeen) > staleClientAfter {
				delete(r.buckets, ip)
			}
		}
		b = &bucket{lim: rate.NewLimiter(r.perSecond, r.burst)}
		r.buckets[clientIP] = b
	}
	b.lastSeen = now
	r.mu.Unlock()

	return b.lim.Allow()
}
