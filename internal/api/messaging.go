package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"doctor-outreach/internal/tallos"
)

type MessagingHandler struct {
	Client *tallos.Client
}

func NewMessagingHandler(client *tallos.Client) *MessagingHandler {
	return &MessagingHandler{Client: client}
}

func (h *MessagingHandler) GetOperators(c *gin.Context) {
	employees, err := h.Client.GetEmployees()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch operators: " + err.Error()})
		return
	}
	if employees == nil {
		employees = []tallos.Employee{}
	}
	c.JSON(http.StatusOK, employees)
}

func (h *MessagingHandler) GetTemplates(c *gin.Context) {
	templates, err := h.Client.GetTemplates()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch templates: " + err.Error()})
		return
	}
	if templates == nil {
		templates = []tallos.Template{}
	}
	c.JSON(http.StatusOK, templates)
}

func (h *MessagingHandler) GetIntegrations(c *gin.Context) {
	integrations, err := h.Client.GetWhatsAppIntegrations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch integrations: " + err.Error()})
		return
	}
	if integrations == nil {
		integrations = []tallos.Integration{}
	}
	c.JSON(http.StatusOK, integrations)
}

func (h *MessagingHandler) GetCustomers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	if err != nil || limit <= 0 {
		limit = 1000
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		page = 1
	}

	raw, err := h.Client.GetCustomers(limit, page, c.Query("channels"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch customers: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}

func (h *MessagingHandler) GetChatHistory(c *gin.Context) {
	raw, err := h.Client.GetChatHistory()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch chat history: " + err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", raw)
}
