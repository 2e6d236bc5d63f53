package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"accountly/internal/session"
)

// page renders an HTML page with the pending flashes and the signed-in user, if any.
func page(c *gin.Context, sessions *session.Manager, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["User"]; !ok {
		user, err := sessions.CurrentUser(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		data["User"] = user
	}
	data["Flashes"] = session.Flashes(c)
	c.HTML(status, name, data)
}

// redirect answers a form submission with a flash and a 303 to target.
func redirect(c *gin.Context, category, message, target string) {
	if message != "" {
		session.Flash(c, category, message)
	}
	c.Redirect(http.StatusSeeOther, target)
}

// fail records err for the error page middleware.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// safeNext returns next when it is a path on this site, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") ||
		strings.ContainsAny(next, "\r\n") {
		return fallback
	}
	return next
}

// requestBaseURL builds scheme://host for links sent out of band.
func requestBaseURL(c *gin.Context, configured string) string {
	if configured != "" {
		return configured
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host
}
