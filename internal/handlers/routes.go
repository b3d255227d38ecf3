package handlers

import (
	"net/http"

	"estatehub-portal/internal/database"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/session"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the gateway surface onto the router.
func RegisterRoutes(r *gin.Engine, client *remote.Client, sessions *session.Manager, db *database.DB, clientFilter bool) {
	auth := NewAuthHandler(sessions)
	props := NewPropertyHandler(client, clientFilter)
	wiz := NewWizardHandler(client, db)
	dash := NewDashboardHandler(client)
	chat := NewChatHandler(client)

	r.Use(SessionMiddleware(sessions))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"sessions":        sessions.Count(),
			"upstream_open":   client.BreakerOpen(),
			"outbound_budget": client.LimiterStats(),
		})
	})

	api := r.Group("/api")

	// Auth
	api.POST("/auth/register", auth.Register)
	api.POST("/auth/login", auth.Login)
	api.GET("/auth/me", auth.Me)
	api.POST("/auth/logout", auth.Logout)

	// Browsing is open to anonymous users.
	api.GET("/properties", props.List)
	api.GET("/properties/:id", props.Get)

	// Everything below requires a session.
	authed := api.Group("")
	authed.Use(RequireSession())

	authed.POST("/properties/:id/save", props.ToggleSave)
	authed.POST("/properties/:id/reviews", props.AddReview)
	authed.PUT("/criteria", props.UpdateCriteria)
	authed.DELETE("/criteria", props.ClearCriteria)
	authed.GET("/grid", props.Grid)
	authed.GET("/saved", props.Saved)
	authed.GET("/my/listings", props.MyListings)

	authed.GET("/wizard", wiz.State)
	authed.PUT("/wizard/form", wiz.UpdateForm)
	authed.POST("/wizard/next", wiz.Next)
	authed.POST("/wizard/back", wiz.Back)
	authed.POST("/wizard/images", wiz.AttachImage)
	authed.DELETE("/wizard/images", wiz.ClearImages)
	authed.POST("/wizard/submit", wiz.Submit)

	authed.GET("/dashboard", dash.Summary)

	authed.GET("/chats", chat.List)
	authed.GET("/chats/:id", chat.Get)
	authed.POST("/chats", chat.Create)
	authed.POST("/chats/:id/messages", chat.SendMessage)
	authed.PUT("/chats/:id/read", chat.MarkRead)
}
