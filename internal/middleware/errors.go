package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorPage is the template rendered for failed requests.
const ErrorPage = "error.html"

// ErrorPages renders the generic error page when a handler recorded an error without writing a response.
func ErrorPages() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		c.HTML(http.StatusInternalServerError, ErrorPage, gin.H{
			"Status":    http.StatusInternalServerError,
			"Message":   "Something went wrong. Please try again later.",
			"RequestID": GetRequestID(c),
		})
	}
}

// NotFound renders the error page for unknown routes.
func NotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, ErrorPage, gin.H{
		"Status":    http.StatusNotFound,
		"Message":   "Page not found.",
		"RequestID": GetRequestID(c),
	})
}
