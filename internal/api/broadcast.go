package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"doctor-outreach/internal/session"
	"doctor-outreach/internal/tallos"
	"doctor-outreach/internal/template"
	"doctor-outreach/internal/ws"
)

type BroadcastHandler struct {
	Client   *tallos.Client
	Sessions *session.Store
	Hub      *ws.Hub
}

func NewBroadcastHandler(client *tallos.Client, sessions *session.Store, hub *ws.Hub) *BroadcastHandler {
	return &BroadcastHandler{Client: client, Sessions: sessions, Hub: hub}
}

type BroadcastRequest struct {
	SessionID      string `json:"session_id" binding:"required"`
	OperatorID     string `json:"operator_id"`
	IntegrationKey string `json:"integration_key" binding:"required"`
	// Template overrides the session's current template when set.
	Template string `json:"template"`
}

// SendBroadcast walks the session's uploaded contacts one at a time:
// render the template with the row's fields, create the Tallos contact,
// send. One failed contact never stops the rest of the batch.
func (h *BroadcastHandler) SendBroadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := h.Sessions.Get(req.SessionID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown session"})
		return
	}

	rows := h.Sessions.Contacts(req.SessionID)
	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No contacts uploaded for this session"})
		return
	}

	tmpl := req.Template
	if tmpl == "" {
		tmpl = sess.CurrentTemplate
	}

	successCount := 0
	for i, row := range rows {
		if h.sendOne(row.Fields, row.Name, tallos.FormatPhone(row.AreaCode, row.Phone), tmpl, req.OperatorID, req.IntegrationKey) {
			successCount++
		}
		h.Hub.NotifyBroadcastProgress(i+1, len(rows), successCount)
	}

	h.Sessions.RecordSend(req.SessionID, len(rows), successCount)

	c.JSON(http.StatusOK, gin.H{
		"status": "Broadcast processed",
		"sent":   successCount,
		"total":  len(rows),
	})
}

func (h *BroadcastHandler) sendOne(fields map[string]string, name, phone, tmpl, operatorID, integrationKey string) bool {
	customerID, err := h.Client.CreateContact(tallos.ContactRequest{
		FullName:    name,
		CelPhone:    phone,
		Integration: integrationKey,
	})
	if err != nil {
		log.Printf("Failed to create contact for %s: %v", name, err)
		return false
	}

	message := template.Render(tmpl, fields)
	if err := h.Client.SendMessage(customerID, message, operatorID); err != nil {
		log.Printf("Failed to send message to %s: %v", name, err)
		return false
	}
	return true
}
