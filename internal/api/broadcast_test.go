package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-outreach/internal/contacts"
	"doctor-outreach/internal/session"
	"doctor-outreach/internal/tallos"
	"doctor-outreach/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContacts() []contacts.Contact {
	mk := func(name, ddd, phone, city string) contacts.Contact {
		return contacts.Contact{
			Name:     name,
			AreaCode: ddd,
			Phone:    phone,
			City:     city,
			Fields: map[string]string{
				"NOME": name, "DDD": ddd, "FONE": phone, "CIDADE": city, "UF": "SP",
			},
		}
	}
	return []contacts.Contact{
		mk("ANA LIMA", "11", "987654321", "SÃO PAULO"),
		mk("FALHA SILVA", "11", "987654322", "SÃO PAULO"),
		mk("JOÃO SOUZA", "11", "987654323", "CAMPINAS"),
	}
}

func TestSendBroadcastContinuesPastFailures(t *testing.T) {
	var sent []map[string]string
	tallosSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v2/contacts/whatsapp-business-by-brokers":
			var req tallos.ContactRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.FullName == "FALHA SILVA" {
				http.Error(w, `{"error":"broker rejected"}`, http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{"_id":"cust-` + req.FullName + `"}`))
		case strings.HasPrefix(r.URL.Path, "/v2/messages/"):
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			sent = append(sent, body)
			w.Write([]byte(`{"ok":true}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer tallosSrv.Close()

	client := &tallos.Client{BaseURL: tallosSrv.URL, Token: "t", HTTPClient: tallosSrv.Client()}
	sessions := session.NewStore()
	hub := ws.NewHub()
	go hub.Run()

	sess := sessions.Create()
	sessions.SetContacts(sess.ID, testContacts())

	handler := NewBroadcastHandler(client, sessions, hub)
	router := gin.New()
	router.POST("/api/broadcast", handler.SendBroadcast)

	reqBody, _ := json.Marshal(BroadcastRequest{
		SessionID:      sess.ID,
		OperatorID:     "op1",
		IntegrationKey: "k1",
		Template:       "Olá {NOME} de {CIDADE}",
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/broadcast", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Sent  int `json:"sent"`
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Sent, "the failed contact must not stop the batch")
	assert.Equal(t, 3, resp.Total)

	// Messages carry the rendered template.
	require.Len(t, sent, 2)
	assert.Equal(t, "Olá ANA LIMA de SÃO PAULO", sent[0]["message"])
	assert.Equal(t, "Olá JOÃO SOUZA de CAMPINAS", sent[1]["message"])
	assert.Equal(t, "operator", sent[0]["sent_by"])
	assert.Equal(t, "op1", sent[0]["operator"])

	// The send log lands on the session.
	got, _ := sessions.Get(sess.ID)
	require.Len(t, got.SendLogs, 1)
	assert.Equal(t, 3, got.SendLogs[0].TotalContacts)
	assert.Equal(t, 2, got.SendLogs[0].SuccessfulSends)
}

func TestSendBroadcastUsesSessionTemplate(t *testing.T) {
	var lastMessage string
	tallosSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/v2/messages/") {
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			lastMessage = body["message"]
		}
		w.Write([]byte(`{"_id":"c1","ok":true}`))
	}))
	defer tallosSrv.Close()

	client := &tallos.Client{BaseURL: tallosSrv.URL, Token: "t", HTTPClient: tallosSrv.Client()}
	sessions := session.NewStore()
	hub := ws.NewHub()
	go hub.Run()

	sess := sessions.Create()
	sessions.SetContacts(sess.ID, testContacts()[:1])
	sessions.SetTemplate(sess.ID, "Oi {NOME}")

	handler := NewBroadcastHandler(client, sessions, hub)
	router := gin.New()
	router.POST("/api/broadcast", handler.SendBroadcast)

	reqBody, _ := json.Marshal(BroadcastRequest{SessionID: sess.ID, IntegrationKey: "k1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/broadcast", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Oi ANA LIMA", lastMessage)
}

func TestSendBroadcastRequiresContacts(t *testing.T) {
	client := &tallos.Client{BaseURL: "http://127.0.0.1:0", Token: "t", HTTPClient: http.DefaultClient}
	sessions := session.NewStore()
	hub := ws.NewHub()
	go hub.Run()

	sess := sessions.Create()

	handler := NewBroadcastHandler(client, sessions, hub)
	router := gin.New()
	router.POST("/api/broadcast", handler.SendBroadcast)

	reqBody, _ := json.Marshal(BroadcastRequest{SessionID: sess.ID, IntegrationKey: "k1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/broadcast", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSendBroadcastUnknownSession(t *testing.T) {
	client := &tallos.Client{BaseURL: "http://127.0.0.1:0", Token: "t", HTTPClient: http.DefaultClient}
	sessions := session.NewStore()
	hub := ws.NewHub()
	go hub.Run()

	handler := NewBroadcastHandler(client, sessions, hub)
	router := gin.New()
	router.POST("/api/broadcast", handler.SendBroadcast)

	reqBody, _ := json.Marshal(BroadcastRequest{SessionID: "nope", IntegrationKey: "k1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/broadcast", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
