package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/highcommand/highcommand/internal/constants"
	apperrors "github.com/highcommand/highcommand/internal/errors"
)

// RequireAuth rejects requests without an authenticated session and exposes
// the session's user id to handlers through the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyUserID)
		if raw == nil {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, raw)
		c.Next()
	}
}

// GetUserID returns the authenticated user's id from the request context.
// Session codecs hand back whatever integer type they decoded, so every
// signed and unsigned variant is accepted.
func GetUserID(c *gin.Context) (uint64, bool) {
	raw, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch id := raw.(type) {
	case uint64:
		return id, true
	case uint:
		return uint64(id), true
	case int:
		if id < 0 {
			return 0, false
		}
		return uint64(id), true
	case int64:
		if id < 0 {
			return 0, false
		}
		return uint64(id), true
	default:
		return 0, false
	}
}
