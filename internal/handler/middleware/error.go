package middleware

import (
	"log/slog"
	"net/http"

	"coach-booking/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

// ErrorHandler writes the envelope for handlers that recorded an error on the
// context without writing a body themselves.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}
		if last := c.Errors.ByType(gin.ErrorTypePublic).Last(); last != nil {
			if resp, ok := last.Meta.(httperr.Response); ok {
				c.JSON(resp.Status, resp)
				return
			}
		}
		slog.Error("request failed without response",
			"request_id", GetRequestID(c),
			"errors", c.Errors.String())
		c.JSON(http.StatusInternalServerError, httperr.Internal())
	}
}

// CustomRecovery turns a panic into a 500 envelope.
func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered from panic",
					"panic", r,
					"request_id", GetRequestID(c),
					"path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, httperr.Internal())
			}
		}()
		c.Next()
	}
}
