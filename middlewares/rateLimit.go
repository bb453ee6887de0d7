package middlewares

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/Siilah/initializers"
	"github.com/Siilah/models"
)

// Limiters idle for longer than limiterIdleTTL are dropped on the next sweep.
const (
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	limiters  = make(map[string]*limiterEntry)
	lastSweep time.Time
	mu        sync.Mutex

	limiterNow = time.Now
)

func getLimiter(key string, r rate.Limit, b int) *rate.Limiter {
	mu.Lock()
	defer mu.Unlock()

	now := limiterNow()
	if now.Sub(lastSweep) >= limiterSweepInterval {
		evictIdleLimitersLocked(now)
		lastSweep = now
	}

	entry, exists := limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(r, b)}
		limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func evictIdleLimitersLocked(now time.Time) {
	for key, entry := range limiters {
		if now.Sub(entry.lastSeen) > limiterIdleTTL {
			delete(limiters, key)
		}
	}
}

// RateLimitMiddleware throttles requests per key. Keys are shared across routes,
// so prefix them when two groups need separate limits.
func RateLimitMiddleware(r rate.Limit, b int, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFunc(c)
		limiter := getLimiter(key, r, b)

		if !limiter.Allow() {
			initializers.Log.Infow("rate limited request", "key", key, "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please slow down :("})
			return
		}

		c.Next()
	}
}

// ClientIPKey limits unauthenticated routes by caller address.
func ClientIPKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		return prefix + ":" + c.ClientIP()
	}
}

// UserKey limits authenticated routes by user, falling back to the caller address.
func UserKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		if user, ok := c.Get("currentUser"); ok {
			if profile, ok := user.(models.UserProfile); ok {
				return prefix + ":" + profile.User_ID
			}
		}
		return prefix + ":" + c.ClientIP()
	}
}
