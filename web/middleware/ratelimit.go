package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"recipe-box/logger"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	BurstSize         int
	KeyFunc           func(c *gin.Context) string
	SkipPaths         []string // Paths to skip rate limiting
}

// DefaultRateLimitConfig returns default rate limit config
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		BurstSize:         30,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		SkipPaths: []string{"/health"},
	}
}

// AuthRateLimitConfig returns the stricter limits applied to login and
// registration attempts.
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 12,
		BurstSize:         5,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// shouldSkip checks if path should be skipped
func (config RateLimitConfig) shouldSkip(path string) bool {
	for _, skipPath := range config.SkipPaths {
		if len(path) >= len(skipPath) && path[:len(skipPath)] == skipPath {
			return true
		}
	}
	return false
}

// limiterEntry pairs a token bucket with its last use so stale buckets can
// be dropped.
type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu         sync.Mutex
	entries    map[string]*limiterEntry
	staleAfter time.Duration
}

func newLimiterStore(staleAfter time.Duration) *limiterStore {
	s := &limiterStore{
		entries:    make(map[string]*limiterEntry),
		staleAfter: staleAfter,
	}
	go s.cleanupLoop()
	return s
}

func (s *limiterStore) getOrCreate(key string, newLimiter func() *rate.Limiter) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: newLimiter()}
		s.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (s *limiterStore) cleanupLoop() {
	ticker := time.NewTicker(s.staleAfter)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-s.staleAfter)
		s.mu.Lock()
		for key, entry := range s.entries {
			if entry.lastSeen.Before(cutoff) {
				delete(s.entries, key)
			}
		}
		s.mu.Unlock()
	}
}

// RateLimitMiddleware creates rate limiting middleware backed by per-key
// token buckets.
func RateLimitMiddleware(config RateLimitConfig) gin.HandlerFunc {
	store := newLimiterStore(10 * time.Minute)
	perSecond := rate.Limit(float64(config.RequestsPerMinute) / 60.0)

	return func(c *gin.Context) {
		// Skip rate limiting for certain paths
		if config.shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		key := config.KeyFunc(c) + ":" + c.Request.URL.Path
		limiter := store.getOrCreate(key, func() *rate.Limiter {
			return rate.NewLimiter(perSecond, config.BurstSize)
		})

		if !limiter.Allow() {
			logger.Warningf("Rate limit exceeded for %s on %s", config.KeyFunc(c), c.Request.URL.Path)
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Rate limit exceeded. Please try again later.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
