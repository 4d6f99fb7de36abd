package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctor-outreach/internal/contacts"
	"doctor-outreach/internal/enrich"
	"doctor-outreach/internal/session"
)

type ContactHandler struct {
	Sessions *session.Store
	Enricher *enrich.Client
}

func NewContactHandler(sessions *session.Store, enricher *enrich.Client) *ContactHandler {
	return &ContactHandler{Sessions: sessions, Enricher: enricher}
}

const uploadPreviewRows = 5

// Upload receives the enriched contact CSV. Column validation runs before
// anything is stored; a missing required column rejects the whole file.
func (h *ContactHandler) Upload(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if _, ok := h.Sessions.Get(sessionID); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown session"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing CSV file: " + err.Error()})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open upload: " + err.Error()})
		return
	}
	defer file.Close()

	rows, err := contacts.LoadEnriched(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.Sessions.SetContacts(sessionID, rows)

	preview := rows
	if len(preview) > uploadPreviewRows {
		preview = preview[:uploadPreviewRows]
	}

	resp := gin.H{"total": len(rows), "preview": preview}

	// Deliverability check is opt-in; it does live DNS lookups.
	if c.PostForm("check_mx") == "true" {
		undeliverable := []string{}
		for _, row := range rows {
			if row.Email != "" && !enrich.HasMX(row.Email) {
				undeliverable = append(undeliverable, row.Email)
			}
		}
		resp["undeliverable_emails"] = undeliverable
	}

	c.JSON(http.StatusOK, resp)
}

type EnrichRequest struct {
	Name string `json:"nome" binding:"required"`
}

// Enrich looks a single name up in the person/company API.
func (h *ContactHandler) Enrich(c *gin.Context) {
	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contact := h.Enricher.LookupByName(req.Name)
	if contact == nil {
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found"})
		return
	}
	c.JSON(http.StatusOK, contact)
}
