package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"inkwell/httperr"
)

// ErrorHandler is the single formatting step every forwarded error funnels
// through: it renders the last recorded error as {message} JSON with its
// status code, defaulting to 500 for unexpected failures.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		message := err.Error()

		var he *httperr.Error
		if errors.As(err, &he) {
			status = he.Status
			message = he.Message
		}

		c.JSON(status, gin.H{"message": message})
	}
}

// NotFound renders a JSON 404 for unmatched API routes.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	}
}
