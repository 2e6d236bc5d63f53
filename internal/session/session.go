// Package session keeps the authenticated identity in a signed cookie and guards protected handlers.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"accountly/internal/entities"
	"accountly/internal/jwt"
	"accountly/internal/repository"
)

const (
	CookieName = "session"
	userKey    = "session.user"

	// LoginPath is where unauthenticated visitors of protected pages are sent.
	LoginPath = "/login"
)

// UserLoader resolves the user id carried by a session.
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*entities.User, error)
}

// AuthedHandler is a handler that runs only with an authenticated user.
type AuthedHandler func(c *gin.Context, user *entities.User)

// Manager issues and reads session cookies. Sessions are stateless: a signed token holding the user id
// with its own expiry, so there is no server-side session list.
type Manager struct {
	tokens *jwt.JWTService
	users  UserLoader
	secure bool
	logger *slog.Logger
}

func NewManager(tokens *jwt.JWTService, users UserLoader, secure bool, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{tokens: tokens, users: users, secure: secure, logger: logger}
}

// Middleware applies the manager's cookie settings to flash cookies written during the request.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(secureKey, m.secure)
		c.Next()
	}
}

// Login establishes a session for user.
func (m *Manager) Login(c *gin.Context, user *entities.User) error {
	token, err := m.tokens.GenerateToken(user.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(m.tokens.TTL().Seconds()), "/", "", m.secure, true)
	c.Set(userKey, user)
	return nil
}

// Logout clears the session cookie.
func (m *Manager) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", m.secure, true)
	c.Set(userKey, (*entities.User)(nil))
}

// CurrentUser returns the signed-in user, or nil for anonymous requests.
// An error is returned only when the user store fails.
func (m *Manager) CurrentUser(c *gin.Context) (*entities.User, error) {
	if v, ok := c.Get(userKey); ok {
		return v.(*entities.User), nil
	}

	raw, err := c.Cookie(CookieName)
	if err != nil || raw == "" {
		c.Set(userKey, (*entities.User)(nil))
		return nil, nil
	}

	userID, err := m.tokens.ValidateToken(raw)
	if err != nil {
		m.logger.DebugContext(c.Request.Context(), "dropping session cookie", "error", err)
		m.Logout(c)
		return nil, nil
	}

	user, err := m.users.GetUser(c.Request.Context(), userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		m.Logout(c)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.Set(userKey, user)
	return user, nil
}

// Protect wraps h so that it only runs with a signed-in user; everyone else is sent to the login page.
func (m *Manager) Protect(h AuthedHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(secureKey, m.secure)
		user, err := m.CurrentUser(c)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		if user == nil {
			Flash(c, CategoryInfo, "Please log in to access this page.")
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		h(c, user)
	}
}
