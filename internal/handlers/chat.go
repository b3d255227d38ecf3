package handlers

import (
	"net/http"

	"estatehub-portal/internal/remote"

	"github.com/gin-gonic/gin"
)

// ChatHandler proxies the upstream chat endpoints for the browser UI.
type ChatHandler struct {
	client *remote.Client
}

// NewChatHandler creates a chat handler.
func NewChatHandler(client *remote.Client) *ChatHandler {
	return &ChatHandler{client: client}
}

// List serves the user's conversations.
func (h *ChatHandler) List(c *gin.Context) {
	sess, _ := currentSession(c)
	chats, err := h.client.ListChats(c.Request.Context(), sess.Token())
	if err != nil {
		respondUpstreamError(c, err, "Failed to load chats")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}

// Get serves one conversation with its messages.
func (h *ChatHandler) Get(c *gin.Context) {
	sess, _ := currentSession(c)
	chat, err := h.client.GetChat(c.Request.Context(), sess.Token(), c.Param("id"))
	if err != nil {
		if remote.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "chat not found"})
			return
		}
		respondUpstreamError(c, err, "Failed to load chat")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": chat})
}

// Create opens a conversation about a property.
func (h *ChatHandler) Create(c *gin.Context) {
	sess, _ := currentSession(c)

	var req struct {
		PropertyID string `json:"propertyId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "propertyId is required"})
		return
	}

	chat, err := h.client.CreateChat(c.Request.Context(), sess.Token(), req.PropertyID)
	if err != nil {
		respondUpstreamError(c, err, "Failed to start chat")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

// SendMessage posts a message into a conversation.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	sess, _ := currentSession(c)

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "text is required"})
		return
	}

	msg, err := h.client.SendMessage(c.Request.Context(), sess.Token(), c.Param("id"), req.Text)
	if err != nil {
		respondUpstreamError(c, err, "Failed to send message")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// MarkRead marks a conversation as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	sess, _ := currentSession(c)
	if err := h.client.MarkChatRead(c.Request.Context(), sess.Token(), c.Param("id")); err != nil {
		respondUpstreamError(c, err, "Failed to mark chat read")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
