package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"doctor-outreach/internal/contacts"
	"doctor-outreach/internal/registry"
	"doctor-outreach/internal/session"
	"doctor-outreach/internal/ws"
)

type SearchHandler struct {
	Browser  *registry.Browser
	Sessions *session.Store
	Hub      *ws.Hub
}

func NewSearchHandler(browser *registry.Browser, sessions *session.Store, hub *ws.Hub) *SearchHandler {
	return &SearchHandler{Browser: browser, Sessions: sessions, Hub: hub}
}

type SearchRequest struct {
	SessionID string `json:"session_id"`
	registry.SearchParams
}

// Search runs a full registry search: form submission, paginated walk,
// extraction. The browser session lives for the duration of this request.
func (h *SearchHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.SearchParams.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please select a state (UF) before searching"})
		return
	}

	records, err := h.Browser.Search(c.Request.Context(), req.SearchParams, func(page, totalPages, count int) {
		h.Hub.NotifySearchProgress(page, totalPages, count)
	})
	if err != nil {
		if errors.Is(err, registry.ErrWaitTimeout) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Registry site did not respond in time: " + err.Error()})
			return
		}
		log.Printf("Search failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	if req.SessionID != "" {
		h.Sessions.RecordSearch(req.SessionID, req.SearchParams, records)
	}

	if records == nil {
		records = []registry.DoctorRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(records), "records": records})
}

// ExportResults streams the session's last search results as the
// NOME;CIDADE;UF;DT_NASCIMENTO CSV.
func (h *SearchHandler) ExportResults(c *gin.Context) {
	sessionID := c.Query("session_id")
	records := h.Sessions.LastResults(sessionID)
	if records == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No search results for this session"})
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="medicos.csv"`)
	if err := contacts.WriteResults(c.Writer, records); err != nil {
		log.Printf("Error writing results CSV: %v", err)
	}
}
