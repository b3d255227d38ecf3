package handlers

import (
	"errors"
	"net/http"

	"estatehub-portal/internal/filter"
	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/store"

	"github.com/gin-gonic/gin"
)

// PropertyHandler exposes property browsing, saving and reviews.
type PropertyHandler struct {
	client       *remote.Client
	clientFilter bool
}

// NewPropertyHandler creates a property handler. clientFilter selects the
// client-side filtering variant for anonymous browsing, mirroring the
// per-session store option.
func NewPropertyHandler(client *remote.Client, clientFilter bool) *PropertyHandler {
	return &PropertyHandler{client: client, clientFilter: clientFilter}
}

// criteriaFromQuery maps the grid's query parameters onto filter criteria.
func criteriaFromQuery(c *gin.Context) models.FilterCriteria {
	return models.FilterCriteria{
		City:         c.Query("city"),
		DealType:     c.DefaultQuery("dealType", "all"),
		PropertyType: c.DefaultQuery("propertyType", "all"),
		BHK:          c.DefaultQuery("bhk", "all"),
		MinPrice:     c.Query("minPrice"),
		MaxPrice:     c.Query("maxPrice"),
		ListedBy:     c.DefaultQuery("listedBy", "all"),
		SearchQuery:  c.Query("searchQuery"),
	}
}

// List serves the property grid. An authenticated request goes through the
// session's store (generation-tagged, saved flags available); an anonymous
// one is a plain upstream read.
func (h *PropertyHandler) List(c *gin.Context) {
	criteria := criteriaFromQuery(c)

	if sess, ok := currentSession(c); ok {
		st := sess.Store()
		err := st.LoadProperties(c.Request.Context(), criteria)
		if err != nil && !errors.Is(err, store.ErrStaleLoad) {
			respondUpstreamError(c, err, "Failed to load properties")
			return
		}
		visible := st.Visible()
		c.JSON(http.StatusOK, gin.H{
			"properties": visible,
			"count":      len(visible),
			"saved":      st.SavedIDs(),
		})
		return
	}

	upstream := criteria
	if h.clientFilter {
		upstream = models.DefaultCriteria()
	}
	props, err := h.client.ListProperties(c.Request.Context(), "", upstream)
	if err != nil {
		respondUpstreamError(c, err, "Failed to load properties")
		return
	}
	if h.clientFilter {
		props = filter.Apply(props, criteria)
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "count": len(props)})
}

// UpdateCriteria records new filter criteria on the session's store. The
// refetch is debounced, so a burst of edits from the filter bar coalesces
// into one trailing upstream request; Grid serves the result.
func (h *PropertyHandler) UpdateCriteria(c *gin.Context) {
	sess, _ := currentSession(c)

	var criteria models.FilterCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	sess.Store().SetCriteria(criteria)
	c.JSON(http.StatusAccepted, gin.H{"criteria": criteria})
}

// ClearCriteria resets the session's filters to defaults and schedules the
// same debounced refetch.
func (h *PropertyHandler) ClearCriteria(c *gin.Context) {
	sess, _ := currentSession(c)
	sess.Store().ClearCriteria()
	c.JSON(http.StatusAccepted, gin.H{"criteria": models.DefaultCriteria()})
}

// Grid serves the store's current visible collection without forcing a
// reload: the read side of the debounced criteria edits. A never-loaded
// store gets one initial load with its current criteria.
func (h *PropertyHandler) Grid(c *gin.Context) {
	sess, _ := currentSession(c)
	st := sess.Store()

	if st.CurrentState() == store.StateIdle {
		if err := st.LoadProperties(c.Request.Context(), st.Criteria()); err != nil && !errors.Is(err, store.ErrStaleLoad) {
			respondUpstreamError(c, err, "Failed to load properties")
			return
		}
	}

	visible := st.Visible()
	resp := gin.H{
		"properties": visible,
		"count":      len(visible),
		"saved":      st.SavedIDs(),
		"criteria":   st.Criteria(),
		"loading":    st.Loading(),
	}
	if err := st.LastError(); err != nil {
		resp["error"] = "Failed to load properties. Please retry."
	}
	c.JSON(http.StatusOK, resp)
}

// Get serves one property. The upstream counts the view.
func (h *PropertyHandler) Get(c *gin.Context) {
	token := ""
	if sess, ok := currentSession(c); ok {
		token = sess.Token()
	}

	prop, err := h.client.GetProperty(c.Request.Context(), token, c.Param("id"))
	if err != nil {
		if remote.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"message": "property not found"})
			return
		}
		respondUpstreamError(c, err, "Failed to load property")
		return
	}
	c.JSON(http.StatusOK, gin.H{"property": prop})
}

// ToggleSave flips the saved state of a property for the current user.
func (h *PropertyHandler) ToggleSave(c *gin.Context) {
	sess, _ := currentSession(c)
	id := c.Param("id")

	if err := sess.Store().ToggleSave(c.Request.Context(), id); err != nil {
		respondUpstreamError(c, err, "Failed to update saved state")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saved":   sess.Store().SavedIDs(),
		"isSaved": sess.Store().IsSaved(id),
	})
}

// Saved serves the user's saved properties from the loaded collection.
func (h *PropertyHandler) Saved(c *gin.Context) {
	sess, _ := currentSession(c)
	st := sess.Store()

	// Make sure the collection is loaded at least once.
	if st.CurrentState() == store.StateIdle {
		if err := st.LoadProperties(c.Request.Context(), models.DefaultCriteria()); err != nil && !errors.Is(err, store.ErrStaleLoad) {
			respondUpstreamError(c, err, "Failed to load saved properties")
			return
		}
	}

	saved := st.SavedProperties()
	c.JSON(http.StatusOK, gin.H{"properties": saved, "count": len(saved)})
}

// MyListings serves the user's own listings straight from the upstream.
func (h *PropertyHandler) MyListings(c *gin.Context) {
	sess, _ := currentSession(c)

	props, err := h.client.MyListings(c.Request.Context(), sess.Token())
	if err != nil {
		respondUpstreamError(c, err, "Failed to load your listings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"properties": props, "count": len(props)})
}

// AddReview validates a review and defers it to the upstream's authority.
func (h *PropertyHandler) AddReview(c *gin.Context) {
	sess, _ := currentSession(c)

	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	review.AuthorID = sess.User.ID
	review.Author = sess.User.Name

	if err := sess.Store().RecordReview(c.Request.Context(), c.Param("id"), review); err != nil {
		if errors.Is(err, models.ErrRatingOutOfRange) || errors.Is(err, models.ErrEmptyComment) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		respondUpstreamError(c, err, "Failed to record review")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "review recorded"})
}
