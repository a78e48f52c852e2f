package middleware

import (
	"net/http"

	"p2p-wallet/pkg/apperror"
	"p2p-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes bounds JSON request bodies.
const DefaultMaxBodyBytes int64 = 64 << 10

// MaxBodySize limits the request body size. A declared Content-Length over
// the limit is rejected up front; otherwise the reader fails once the limit
// is crossed and binding reports 413.
func MaxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, apperror.ErrPayloadTooLarge())
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
