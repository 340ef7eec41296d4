// internal/middleware/rate_limit.go
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/horizonglow/marketplace-backend/internal/config"
	"github.com/horizonglow/marketplace-backend/internal/utils"
)

// evictAfter is how long a client IP may stay idle before its limiter state
// is dropped.
const evictAfter = 3 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter tracks one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
}

// NewRateLimiter allows n events per interval for each client IP, with
// bursts up to burst.
func NewRateLimiter(n int, interval time.Duration, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Limit(float64(n) / interval.Seconds()),
		burst:   burst,
	}
	go rl.evictIdle()
	return rl
}

func (rl *RateLimiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		for ip, client := range rl.clients {
			if time.Since(client.lastSeen) > evictAfter {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	client, ok := rl.clients[ip]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = client
	}
	client.lastSeen = time.Now()
	return client.limiter
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate_limited",
				"Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RateLimiters bundles the route-group limiters built from configuration.
type RateLimiters struct {
	General *RateLimiter
	Auth    *RateLimiter
	Upload  *RateLimiter
}

func NewRateLimiters(cfg config.RateLimitConfig) *RateLimiters {
	return &RateLimiters{
		General: NewRateLimiter(cfg.GeneralPerSecond, time.Second, cfg.GeneralBurst),
		Auth:    NewRateLimiter(cfg.AuthPerMinute, time.Minute, cfg.AuthPerMinute),
		Upload:  NewRateLimiter(cfg.UploadPerMinute, time.Minute, cfg.UploadPerMinute),
	}
}
