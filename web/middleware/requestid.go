package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIdHeader carries the request id on responses and accepted requests.
const RequestIdHeader = "X-Request-ID"

// RequestIdMiddleware tags each request with an id, reusing the caller's
// X-Request-ID when present so log lines can be correlated.
func RequestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(RequestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}

		c.Set("request_id", requestId)
		c.Writer.Header().Set(RequestIdHeader, requestId)
		c.Next()
	}
}
