package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"

	"recipe-box/logger"
)

func newLimitedRouter(config RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimitMiddleware(config))
	router.POST("/login", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestRateLimitBlocksAfterBurst(t *testing.T) {
	logger.InitLogger(logging.DEBUG)
	router := newLimitedRouter(AuthRateLimitConfig())

	var lastCode int
	for i := 0; i < 6; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login", nil)
		router.ServeHTTP(w, req)
		lastCode = w.Code
		if i < 5 {
			assert.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
		}
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestRateLimitSetsRetryAfter(t *testing.T) {
	logger.InitLogger(logging.DEBUG)
	config := AuthRateLimitConfig()
	config.BurstSize = 1
	router := newLimitedRouter(config)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestRateLimitSkipsConfiguredPaths(t *testing.T) {
	config := DefaultRateLimitConfig()
	config.BurstSize = 1
	router := newLimitedRouter(config)

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitKeysSeparateClients(t *testing.T) {
	config := AuthRateLimitConfig()
	config.BurstSize = 1
	config.KeyFunc = func(c *gin.Context) string {
		return c.GetHeader("X-Test-Client")
	}
	router := newLimitedRouter(config)

	for _, client := range []string{"alpha", "beta"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/login", nil)
		req.Header.Set("X-Test-Client", client)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "first request of %s should pass", client)
	}
}
