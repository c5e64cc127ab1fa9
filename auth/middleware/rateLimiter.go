package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// limiterPool hands out one token bucket per client IP and evicts buckets
// that have been idle for a few minutes.
type limiterPool struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
}

func newLimiterPool(limit rate.Limit, burst int) *limiterPool {
	p := &limiterPool{
		visitors: make(map[string]*visitor),
		limit:    limit,
		burst:    burst,
	}
	go p.evictLoop()
	return p
}

func (p *limiterPool) evictLoop() {
	for {
		time.Sleep(time.Minute)
		p.mu.Lock()
		for ip, v := range p.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(p.visitors, ip)
			}
		}
		p.mu.Unlock()
	}
}

func (p *limiterPool) get(ip string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	v, ok := p.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(p.limit, p.burst)}
		p.visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// RateLimit allows one request per second with a burst of five, per IP.
func RateLimit() gin.HandlerFunc {
	pool := newLimiterPool(rate.Every(time.Second), 5)

	return func(c *gin.Context) {
		if !pool.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}
