// middleware/ratelimit.go
package middleware

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

// bucket is a token bucket for one client. Callers hold RateLimiter.mu.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client key. Each bucket holds up to
// capacity tokens and refills continuously so that capacity requests are
// allowed per window.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity float64
	perSec   float64
	now      func() time.Time
}

// NewRateLimiter allows maxRequests per window for each client key.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		buckets:  make(map[string]*bucket),
		capacity: float64(maxRequests),
		perSec:   float64(maxRequests) / window.Seconds(),
		now:      time.Now,
	}
}

// Allow takes a token from key's bucket.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key)
	return ok
}

// take reports whether a token was available and, when not, how long until
// the next one is.
func (rl *RateLimiter) take(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.capacity, lastSeen: now}
		rl.buckets[key] = b
	}
	b.tokens = math.Min(rl.capacity, b.tokens+now.Sub(b.lastSeen).Seconds()*rl.perSec)
	b.lastSeen = now

	if b.tokens >= 1 {
		b.tokens--
		return true, 0
	}
	wait := time.Duration((1 - b.tokens) / rl.perSec * float64(time.Second))
	return false, wait
}

// Prune drops buckets idle for longer than maxIdle.
func (rl *RateLimiter) Prune(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > maxIdle {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// StartPruning prunes the limiters every interval until stop is closed.
func StartPruning(stop <-chan struct{}, interval time.Duration, limiters ...*RateLimiter) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				for _, rl := range limiters {
					rl.Prune(30 * time.Minute)
				}
			}
		}
	}()
}

func exemptFromRateLimit(path string) bool {
	if path == "/health" {
		return true
	}
	for _, prefix := range []string{"/assets/", "/css/", "/js/", "/images/"} {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// RateLimit answers 429 with message once the client IP has used up its
// bucket, and sets Retry-After in seconds. A nil limiter disables the check.
func RateLimit(limiter *RateLimiter, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil || exemptFromRateLimit(c.Path()) {
			return c.Next()
		}
		ok, wait := limiter.take(c.IP())
		if !ok {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"error":   message,
			})
		}
		return c.Next()
	}
}
