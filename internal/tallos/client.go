// Package tallos wraps the Tallos messaging platform HTTP API: employees,
// message templates, WhatsApp integrations, contact creation and sending.
package tallos

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"doctor-outreach/internal/config"
)

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL:    cfg.TallosBaseURL,
		Token:      cfg.TallosToken,
		HTTPClient: &http.Client{},
	}
}

func (c *Client) sendRequest(method, path string, body interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return respBody, fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}

	return respBody, nil
}

// --- Employees ---

// Employee is a platform agent that can be selected as the sending operator.
type Employee struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (c *Client) GetEmployees() ([]Employee, error) {
	resp, err := c.sendRequest("GET", "/v2/employees", nil)
	if err != nil {
		return nil, err
	}

	var employees []Employee
	if err := json.Unmarshal(resp, &employees); err != nil {
		return nil, fmt.Errorf("decoding employees: %w", err)
	}
	return employees, nil
}

// --- Templates ---

// Template is a reusable message body. ShortPreview is the first characters
// of the content for selection lists; FullContent is what gets rendered.
type Template struct {
	ID           string `json:"id"`
	ShortPreview string `json:"content"`
	FullContent  string `json:"full_content"`
	MediaURL     string `json:"content_media,omitempty"`
}

const previewLength = 50

type rawTemplate struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	ContentMedia string `json:"content_media"`
}

// GetTemplates fetches and flattens the template list. The API nests the
// list under templates.templates on some accounts and returns it flat on
// others; both shapes are handled.
func (c *Client) GetTemplates() ([]Template, error) {
	resp, err := c.sendRequest("GET", "/v2/template/all", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Templates json.RawMessage `json:"templates"`
	}
	if err := json.Unmarshal(resp, &envelope); err != nil {
		return nil, fmt.Errorf("decoding templates response: %w", err)
	}
	if len(envelope.Templates) == 0 {
		return nil, nil
	}

	var raw []rawTemplate
	if err := json.Unmarshal(envelope.Templates, &raw); err != nil {
		var nested struct {
			Templates []rawTemplate `json:"templates"`
		}
		if err := json.Unmarshal(envelope.Templates, &nested); err != nil {
			return nil, fmt.Errorf("unrecognized templates response shape")
		}
		raw = nested.Templates
	}

	templates := make([]Template, 0, len(raw))
	for _, t := range raw {
		templates = append(templates, Template{
			ID:           t.ID,
			ShortPreview: preview(t.Content),
			FullContent:  t.Content,
			MediaURL:     t.ContentMedia,
		})
	}
	return templates, nil
}

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

// --- WhatsApp integrations ---

// Integration identifies a configured WhatsApp sending channel.
type Integration struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (c *Client) GetWhatsAppIntegrations() ([]Integration, error) {
	resp, err := c.sendRequest("GET", "/v2/whatsapp/integrations/official", nil)
	if err != nil {
		return nil, err
	}

	var integrations []Integration
	if err := json.Unmarshal(resp, &integrations); err != nil {
		return nil, fmt.Errorf("decoding integrations: %w", err)
	}
	for i := range integrations {
		if integrations[i].Label == "" {
			integrations[i].Label = "Unnamed"
		}
	}
	return integrations, nil
}

// --- Contacts ---

type ContactRequest struct {
	FullName    string `json:"full_name"`
	CelPhone    string `json:"cel_phone"`
	Integration string `json:"integration"`
}

// CreateContact registers a contact on the WhatsApp-Business-by-brokers
// channel and returns the created customer id.
func (c *Client) CreateContact(req ContactRequest) (string, error) {
	resp, err := c.sendRequest("POST", "/v2/contacts/whatsapp-business-by-brokers", req)
	if err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(resp, &created); err != nil {
		return "", fmt.Errorf("decoding contact response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("contact response carried no _id: %s", string(resp))
	}
	return created.ID, nil
}

// --- Messages ---

type sendMessageRequest struct {
	Message  string `json:"message"`
	SentBy   string `json:"sent_by"`
	Operator string `json:"operator,omitempty"`
}

func (c *Client) SendMessage(customerID, message, operatorID string) error {
	req := sendMessageRequest{
		Message:  message,
		SentBy:   "operator",
		Operator: operatorID,
	}
	_, err := c.sendRequest("POST", "/v2/messages/"+customerID+"/send", req)
	return err
}

// --- Customers and history (passthrough) ---

func (c *Client) GetCustomers(limit, page int, channels string) (json.RawMessage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("page", strconv.Itoa(page))
	if channels != "" {
		params.Set("channels", channels)
	}
	resp, err := c.sendRequest("GET", "/v2/customers?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

func (c *Client) GetChatHistory() (json.RawMessage, error) {
	resp, err := c.sendRequest("GET", "/v1/chat/history", nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp), nil
}

// FormatPhone joins DDD and phone, strips non-digits, and formats numbers
// with at least 11 digits as +55 XX XXXXX-XXXX. Shorter numbers are returned
// as bare digits.
func FormatPhone(areaCode, phone string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.TrimSpace(areaCode)+strings.TrimSpace(phone))

	if len(digits) < 11 {
		return digits
	}
	return fmt.Sprintf("+55 %s %s-%s", digits[:2], digits[2:7], digits[7:11])
}
