// internal/middleware/rate_limit_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/horizonglow/marketplace-backend/internal/config"
)

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	limiter := NewRateLimiter(1, time.Minute, 2)
	r.GET("/ping", limiter.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	status := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":12345"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, status("10.0.0.1"))
	assert.Equal(t, http.StatusOK, status("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1"))

	// Each client IP carries its own bucket.
	assert.Equal(t, http.StatusOK, status("10.0.0.2"))
}

func TestNewRateLimitersFromConfig(t *testing.T) {
	limits := NewRateLimiters(config.RateLimitConfig{
		GeneralPerSecond: 20,
		GeneralBurst:     40,
		AuthPerMinute:    6,
		UploadPerMinute:  12,
	})

	assert.Equal(t, rate.Limit(20), limits.General.limit)
	assert.Equal(t, 40, limits.General.burst)
	assert.InDelta(t, 0.1, float64(limits.Auth.limit), 1e-9)
	assert.Equal(t, 6, limits.Auth.burst)
	assert.InDelta(t, 0.2, float64(limits.Upload.limit), 1e-9)
	assert.Equal(t, 12, limits.Upload.burst)
}
