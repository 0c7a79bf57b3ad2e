package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserContextKey is the gin context key holding the authenticated user.
const UserContextKey = "auth.user"

type AuthMiddleware struct {
	repository Repository
	log        *zap.Logger
}

func NewAuthMiddleware(repo Repository, log *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		repository: repo,
		log:        log,
	}
}

// RequireAuth loads the session user and aborts to the login page for
// guests. Stale sessions pointing at deleted users are cleared.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		id, ok := session.Get(sessionUserIDKey).(uint)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user, err := m.repository.GetUserByID(id)
		if err != nil {
			if !errors.Is(err, ErrUserNotFound) {
				m.log.Error("failed to load session user", zap.Error(err))
			}
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}

// RequireGuest redirects authenticated callers away from guest-only
// pages such as the login form.
func (m *AuthMiddleware) RequireGuest() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		if _, ok := session.Get(sessionUserIDKey).(uint); ok {
			c.Redirect(http.StatusFound, "/dashboard")
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireAuth.
func CurrentUser(c *gin.Context) (*User, bool) {
	user, ok := c.Get(UserContextKey)
	if !ok {
		return nil, false
	}
	u, ok := user.(*User)
	return u, ok
}
