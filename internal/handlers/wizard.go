package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"estatehub-portal/internal/database"
	"estatehub-portal/internal/models"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/session"
	"estatehub-portal/internal/wizard"

	"github.com/gin-gonic/gin"
)

// maxImageBytes bounds one uploaded photo.
const maxImageBytes = 5 << 20

// WizardHandler drives the listing wizard over HTTP: one wizard per
// session, with the form persisted as a draft between steps.
type WizardHandler struct {
	client *remote.Client
	db     *database.DB
}

// NewWizardHandler creates a wizard handler.
func NewWizardHandler(client *remote.Client, db *database.DB) *WizardHandler {
	return &WizardHandler{client: client, db: db}
}

// wizardFor returns the session's wizard, restoring a persisted draft into
// a fresh one. Access control errors map to the responses the UI renders
// as the login prompt and the access-denied screen.
func (h *WizardHandler) wizardFor(c *gin.Context, sess *session.Session) (*wizard.Wizard, bool) {
	fresh := !sess.HasWizard()
	w, err := sess.Wizard()
	if err != nil {
		if errors.Is(err, wizard.ErrRoleNotAllowed) {
			c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		} else {
			c.JSON(http.StatusUnauthorized, gin.H{"message": err.Error()})
		}
		return nil, false
	}

	if fresh && h.db != nil {
		draft, err := h.db.GetDraft(sess.ID)
		if err != nil {
			log.Printf("wizard: failed to read draft for session %s: %v", sess.ID, err)
		} else if draft != nil {
			if err := w.RestoreDraft(draft.Step, draft.Form); err != nil {
				log.Printf("wizard: discarding unreadable draft for session %s: %v", sess.ID, err)
			}
		}
	}
	return w, true
}

// saveDraft persists the wizard's current form.
func (h *WizardHandler) saveDraft(sess *session.Session, w *wizard.Wizard) {
	if h.db == nil {
		return
	}
	form, err := w.MarshalForm()
	if err != nil {
		log.Printf("wizard: failed to encode draft for session %s: %v", sess.ID, err)
		return
	}
	if err := h.db.SaveDraft(&models.WizardDraft{SessionID: sess.ID, Step: w.Step(), Form: form}); err != nil {
		log.Printf("wizard: failed to save draft for session %s: %v", sess.ID, err)
	}
}

// state is the wizard view the UI renders.
func wizardState(w *wizard.Wizard) gin.H {
	return gin.H{
		"step":       w.Step(),
		"form":       w.Form(),
		"imageCount": w.ImageCount(),
		"stepValid":  w.ValidateStep(w.Step()),
	}
}

// State returns the current wizard state.
func (h *WizardHandler) State(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, wizardState(w))
}

// UpdateForm merges submitted form fields and persists the draft.
func (h *WizardHandler) UpdateForm(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}

	var form wizard.FormData
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request payload"})
		return
	}
	w.SetForm(form)
	h.saveDraft(sess, w)
	c.JSON(http.StatusOK, wizardState(w))
}

// Next advances the wizard one step, or reports the validation error the
// UI shows as a toast.
func (h *WizardHandler) Next(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}

	if err := w.Next(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error(), "step": w.Step()})
		return
	}
	h.saveDraft(sess, w)
	c.JSON(http.StatusOK, wizardState(w))
}

// Back returns to the previous step.
func (h *WizardHandler) Back(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}
	w.Back()
	h.saveDraft(sess, w)
	c.JSON(http.StatusOK, wizardState(w))
}

// AttachImage accepts one multipart photo upload.
func (h *WizardHandler) AttachImage(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}
	if file.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "image exceeds the 5MB limit"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to read image"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "failed to read image"})
		return
	}

	att := remote.ImageAttachment{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	}
	if err := w.AttachImage(att); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wizardState(w))
}

// ClearImages drops all attached photos.
func (h *WizardHandler) ClearImages(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}
	w.ClearImages()
	c.JSON(http.StatusOK, wizardState(w))
}

// Submit posts the listing. On success the wizard and its draft are
// discarded and the UI is told which dashboard to navigate to.
func (h *WizardHandler) Submit(c *gin.Context) {
	sess, _ := currentSession(c)
	w, ok := h.wizardFor(c, sess)
	if !ok {
		return
	}

	res, err := w.Submit(c.Request.Context(), h.client, sess.Token())
	if err != nil {
		if errors.Is(err, wizard.ErrImageCount) || errors.Is(err, wizard.ErrStepIncomplete) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
			return
		}
		// The wizard stays on step 4; the message is the server's when it
		// sent one, a generic fallback otherwise.
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error(), "step": w.Step()})
		return
	}

	sess.ResetWizard()
	if h.db != nil {
		if err := h.db.DeleteDraft(sess.ID); err != nil {
			log.Printf("wizard: failed to delete draft for session %s: %v", sess.ID, err)
		}
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Property listed successfully!",
		"property": res.Property,
		"redirect": res.RedirectPath,
	})
}
