package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per client key. A bucket holds `limit`
// tokens and refills completely over `window`.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*visitor
	limit   int
	every   rate.Limit
	idleTTL time.Duration
	done    chan struct{}
	once    sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window per key.
// Idle buckets are swept in the background until Close is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		clients: make(map[string]*visitor),
		limit:   limit,
		every:   rate.Every(window / time.Duration(limit)),
		idleTTL: window * 2,
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.idleTTL)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, v := range rl.clients {
				if now.Sub(v.lastSeen) > rl.idleTTL {
					delete(rl.clients, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Close stops the background sweeper
func (rl *RateLimiter) Close() {
	rl.once.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) get(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.clients[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.every, rl.limit)}
		rl.clients[key] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// Allow consumes one token for key. When the bucket is empty it reports
// how long until the next token.
func (rl *RateLimiter) Allow(key string) (remaining int, retryAfter time.Duration, ok bool) {
	limiter := rl.get(key)
	now := time.Now()

	reservation := limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return 0, delay, false
	}
	return int(math.Max(0, math.Floor(limiter.TokensAt(now)))), 0, true
}

// Limit returns the bucket size
func (rl *RateLimiter) Limit() int {
	return rl.limit
}

// RateLimit limits requests per client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		remaining, retryAfter, ok := limiter.Allow(c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeRateLimited, "Too many requests, please try again later", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
