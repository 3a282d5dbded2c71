package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit bounds license request bodies.
const DefaultBodyLimit int64 = 64 << 10

// BodyLimitMiddleware returns a Gin middleware that limits the size of request bodies.
// Requests declaring a larger Content-Length are rejected with 413 before the
// handler runs; bodies without a declared length are cut off at maxBytes.
func BodyLimitMiddleware(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
