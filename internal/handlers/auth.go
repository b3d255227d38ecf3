package handlers

import (
	"errors"
	"log"
	"net/http"

	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/session"

	"github.com/gin-gonic/gin"
)

// AuthHandler exposes the auth surface the browser UI consumes.
type AuthHandler struct {
	sessions *session.Manager
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(sessions *session.Manager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Register creates an account upstream and returns the new session.
func (h *AuthHandler) Register(c *gin.Context) {
	var req remote.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}

	sess, err := h.sessions.Register(c.Request.Context(), req)
	if err != nil {
		respondUpstreamError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": sess.ID,
		"user":      sess.User,
	})
}

// Login authenticates upstream and returns the session.
func (h *AuthHandler) Login(c *gin.Context) {
	var req remote.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req)
	if err != nil {
		respondUpstreamError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": sess.ID,
		"user":      sess.User,
	})
}

// Me returns the authenticated user for the presented session.
func (h *AuthHandler) Me(c *gin.Context) {
	sess, ok := currentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

// Logout destroys the session and its persisted token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sess, ok := currentSession(c); ok {
		h.sessions.Logout(sess.ID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// respondUpstreamError maps a remote client failure onto the gateway
// response, surfacing the server's message when one exists.
func respondUpstreamError(c *gin.Context, err error, fallback string) {
	var apiErr *remote.APIError
	switch {
	case errors.As(err, &apiErr):
		c.JSON(apiErr.StatusCode, gin.H{"message": apiErr.UserMessage()})
	case errors.Is(err, remote.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "session expired, please login again"})
	case errors.Is(err, remote.ErrCircuitOpen), errors.Is(err, remote.ErrRateLimited):
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "service temporarily unavailable, please retry"})
	default:
		log.Printf("upstream error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"message": fallback})
	}
}
