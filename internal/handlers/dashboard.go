package handlers

import (
	"errors"
	"net/http"

	"estatehub-portal/internal/dashboard"
	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/store"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the role-specific dashboard summaries.
type DashboardHandler struct {
	client *remote.Client
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(client *remote.Client) *DashboardHandler {
	return &DashboardHandler{client: client}
}

// Summary returns the aggregates for the session's role: owners and
// brokers get totals over their own listings, customers get their saved
// and review activity.
func (h *DashboardHandler) Summary(c *gin.Context) {
	sess, _ := currentSession(c)

	switch sess.User.Role {
	case models.RoleOwner, models.RoleBroker:
		props, err := h.client.MyListings(c.Request.Context(), sess.Token())
		if err != nil {
			respondUpstreamError(c, err, "Failed to load dashboard")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"role":    sess.User.Role,
			"summary": dashboard.SummarizeListings(props, sess.User.ID),
		})

	default:
		st := sess.Store()
		if st.CurrentState() == store.StateIdle {
			if err := st.LoadProperties(c.Request.Context(), models.DefaultCriteria()); err != nil && !errors.Is(err, store.ErrStaleLoad) {
				respondUpstreamError(c, err, "Failed to load dashboard")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"role":    sess.User.Role,
			"summary": dashboard.SummarizeCustomer(st.Properties(), st.SavedIDs(), sess.User.ID),
		})
	}
}
