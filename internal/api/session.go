package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctor-outreach/internal/session"
)

type SessionHandler struct {
	Sessions *session.Store
}

func NewSessionHandler(sessions *session.Store) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.Sessions.Create()
	c.JSON(http.StatusCreated, sess)
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := h.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *SessionHandler) Delete(c *gin.Context) {
	h.Sessions.Delete(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "Session discarded"})
}

type SetTemplateRequest struct {
	Template string `json:"template" binding:"required"`
}

// SetTemplate stores a free-form custom template on the session, replacing
// any platform template selected earlier.
func (h *SessionHandler) SetTemplate(c *gin.Context) {
	var req SetTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.Sessions.SetTemplate(c.Param("id"), req.Template) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "Template updated"})
}
