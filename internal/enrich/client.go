// Package enrich augments doctor records with contact data from the Lemit
// person/company lookup API.
package enrich

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"doctor-outreach/internal/config"
)

const notAvailable = "Não disponível"

type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		BaseURL:    cfg.LemitBaseURL,
		Token:      cfg.LemitToken,
		HTTPClient: &http.Client{},
	}
}

// Contact is the enrichment result: the first phone and address the lookup
// returned, with a sentinel when one of the two is missing.
type Contact struct {
	Phone   string `json:"telefone"`
	Address string `json:"endereco"`
}

type lookupResponse struct {
	Telefones []string `json:"telefones"`
	Enderecos []string `json:"enderecos"`
}

// LookupByName queries the person endpoint and falls back to the company
// endpoint when nothing comes back. It never returns an error: every failure
// class is logged and treated as not found, so nil means no contact data.
func (c *Client) LookupByName(name string) *Contact {
	if contact := c.lookup("/consulta/pessoa/", name); contact != nil {
		return contact
	}
	log.Printf("Person lookup empty for %q, trying company endpoint", name)
	return c.lookup("/consulta/empresa/", name)
}

func (c *Client) lookup(path, name string) *Contact {
	payload, err := json.Marshal(map[string]string{"nome": name})
	if err != nil {
		log.Printf("Error encoding lookup payload: %v", err)
		return nil
	}

	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("Error building lookup request: %v", err)
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Printf("Lookup request failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("Error reading lookup response: %v", err)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		log.Printf("Lookup %s returned status %d: %s", path, resp.StatusCode, string(body))
		return nil
	}

	var data lookupResponse
	if err := json.Unmarshal(body, &data); err != nil {
		log.Printf("Error decoding lookup response: %v (body: %s)", err, string(body))
		return nil
	}

	if len(data.Telefones) == 0 && len(data.Enderecos) == 0 {
		return nil
	}

	contact := &Contact{Phone: notAvailable, Address: notAvailable}
	if len(data.Telefones) > 0 {
		contact.Phone = data.Telefones[0]
	}
	if len(data.Enderecos) > 0 {
		contact.Address = data.Enderecos[0]
	}
	return contact
}
