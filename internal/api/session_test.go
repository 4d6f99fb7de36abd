package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doctor-outreach/internal/registry"
	"doctor-outreach/internal/session"
	"doctor-outreach/internal/ws"
)

func sessionRouter(sessions *session.Store) *gin.Engine {
	handler := NewSessionHandler(sessions)
	router := gin.New()
	router.POST("/api/session", handler.Create)
	router.GET("/api/session/:id", handler.Get)
	router.DELETE("/api/session/:id", handler.Delete)
	router.PUT("/api/session/:id/template", handler.SetTemplate)
	return router
}

func TestSessionCreateAndGet(t *testing.T) {
	sessions := session.NewStore()
	router := sessionRouter(sessions)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "/api/session", nil))
	require.Equal(t, http.StatusCreated, w.Code)

	var created session.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, session.DefaultTemplate, created.CurrentTemplate)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/session/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSessionSetTemplate(t *testing.T) {
	sessions := session.NewStore()
	sess := sessions.Create()
	router := sessionRouter(sessions)

	body, _ := json.Marshal(SetTemplateRequest{Template: "Oi {NOME}"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/api/session/"+sess.ID+"/template", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got, _ := sessions.Get(sess.ID)
	assert.Equal(t, "Oi {NOME}", got.CurrentTemplate)
}

func TestSessionGetUnknown(t *testing.T) {
	router := sessionRouter(session.NewStore())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/session/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportResults(t *testing.T) {
	sessions := session.NewStore()
	sess := sessions.Create()
	sessions.RecordSearch(sess.ID, registry.SearchParams{State: "MA"}, []registry.DoctorRecord{
		{Name: "DR. A", City: "SÃO LUÍS", State: "MA"},
	})

	handler := NewSearchHandler(nil, sessions, ws.NewHub())
	router := gin.New()
	router.GET("/api/search/export", handler.ExportResults)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/search/export?session_id="+sess.ID, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "medicos.csv")
	assert.Equal(t, "NOME;CIDADE;UF;DT_NASCIMENTO\nDR. A;SÃO LUÍS;MA;\n", w.Body.String())
}

func TestExportResultsNoSearch(t *testing.T) {
	handler := NewSearchHandler(nil, session.NewStore(), ws.NewHub())
	router := gin.New()
	router.GET("/api/search/export", handler.ExportResults)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/search/export?session_id=nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
