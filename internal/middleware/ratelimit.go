package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/moodlens/backend/internal/apierror"
	"github.com/JonnyWalker81/moodlens/backend/internal/logger"
)

// RateLimiter counts requests per client in fixed windows. Authenticated requests
// are keyed by user ID so users behind one NAT do not share a budget; anonymous
// requests fall back to the client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	rate    int
	period  time.Duration
	name    string
	now     func() time.Time
}

type window struct {
	start time.Time
	count int
}

// NewRateLimiter allows rate requests per period. name labels log lines.
func NewRateLimiter(rate int, period time.Duration, name string) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*window),
		rate:    rate,
		period:  period,
		name:    name,
		now:     time.Now,
	}

	go rl.sweep()

	logger.Default().Debug("rate limiter initialized",
		logger.String("name", name),
		logger.Int("rate", rate),
		logger.Duration("period", period),
	)
	return rl
}

// sweep drops clients whose window closed more than one period ago
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(rl.period * 2)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := rl.now().Add(-2 * rl.period)
		for key, w := range rl.clients {
			if w.start.Before(cutoff) {
				delete(rl.clients, key)
			}
		}
		rl.mu.Unlock()
	}
}

// allow records a request for key and returns whether it fits the budget along
// with the requests left in the current window
func (rl *RateLimiter) allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.period {
		w = &window{start: now}
		rl.clients[key] = w
	}
	w.count++

	remaining := rl.rate - w.count
	if remaining < 0 {
		remaining = 0
	}
	return w.count <= rl.rate, remaining
}

// retryAfter is the number of seconds until key's window resets
func (rl *RateLimiter) retryAfter(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.clients[key]
	if !ok {
		return 0
	}
	secs := int(w.start.Add(rl.period).Sub(rl.now()).Seconds() + 0.999)
	if secs < 1 {
		secs = 1
	}
	return secs
}

// RateLimit is the general budget: 300 requests per minute
func RateLimit() gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(300, time.Minute, "general"))
}

// RateLimitDashboard limits the endpoints that trigger a full snapshot computation
// to 30 requests per minute
func RateLimitDashboard() gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(30, time.Minute, "dashboard"))
}

// RateLimitAuth limits sign-in and sign-up to 10 requests per minute
func RateLimitAuth() gin.HandlerFunc {
	return rateLimitMiddleware(NewRateLimiter(10, time.Minute, "auth"))
}

func clientKey(c *gin.Context) string {
	if userID := c.GetString("user_id"); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}

func rateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		allowed, remaining := limiter.allow(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", limiter.name),
				logger.String("client", key),
				logger.Int("limit", limiter.rate),
			)
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), limiter.retryAfter(key)))
			c.Abort()
			return
		}

		c.Next()
	}
}
