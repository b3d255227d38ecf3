package handlers

import (
	"net/http"

	"estatehub-portal/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHeader carries the opaque portal session id the browser stores.
const SessionHeader = "X-Portal-Session"

// SessionMiddleware resolves the portal session id, if any, and attaches
// the session to the request context. Anonymous requests pass through.
func SessionMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(SessionHeader)
		if id == "" {
			c.Next()
			return
		}
		sess, err := sessions.Resolve(c.Request.Context(), id)
		if err == nil {
			c.Set(session.ContextKey, sess)
		}
		// A failed restore is silent: the request proceeds unauthenticated.
		c.Next()
	}
}

// RequireSession aborts with 401 when no session was resolved.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentSession(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "login required"})
			return
		}
		c.Next()
	}
}

// currentSession pulls the resolved session off the gin context.
func currentSession(c *gin.Context) (*session.Session, bool) {
	v, ok := c.Get(session.ContextKey)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}
