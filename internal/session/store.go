// Package session holds per-operator session state: search history, the
// currently selected message template and send logs. Everything here is
// advisory and lives only as long as the process.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"doctor-outreach/internal/contacts"
	"doctor-outreach/internal/registry"
)

// DefaultTemplate is the custom-message starting point offered to operators.
const DefaultTemplate = `Olá {NOME},

Esperamos que esteja bem!
Identificamos seu cadastro em {CIDADE}/{UF}.

Gostaríamos de confirmar seus dados:
Endereço: {FULL-LOGRADOURO}
CEP: {CEP}

Por favor, confirme se estas informações estão corretas.`

type SearchEntry struct {
	Timestamp time.Time             `json:"timestamp"`
	Params    registry.SearchParams `json:"params"`
	Count     int                   `json:"count"`
}

type SendLog struct {
	Timestamp       time.Time `json:"timestamp"`
	TotalContacts   int       `json:"total_contacts"`
	SuccessfulSends int       `json:"successful_sends"`
}

// Session is the explicit session-context object: created at session start,
// mutated only through the store, discarded at session end.
type Session struct {
	ID              string                  `json:"id"`
	CreatedAt       time.Time               `json:"created_at"`
	SearchHistory   []SearchEntry           `json:"search_history"`
	LastResults     []registry.DoctorRecord `json:"-"`
	Contacts        []contacts.Contact      `json:"-"`
	CurrentTemplate string                  `json:"current_template"`
	SendLogs        []SendLog               `json:"send_logs"`
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (s *Store) Create() Session {
	sess := &Session{
		ID:              uuid.NewString(),
		CreatedAt:       time.Now(),
		CurrentTemplate: DefaultTemplate,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return snapshot(sess)
}

// Get returns a snapshot of the session. The live struct never leaves the
// store: handlers read and marshal the copy while writers keep mutating the
// original under the lock.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, false
	}
	return snapshot(sess), true
}

func snapshot(sess *Session) Session {
	out := *sess
	out.SearchHistory = append([]SearchEntry(nil), sess.SearchHistory...)
	out.SendLogs = append([]SendLog(nil), sess.SendLogs...)
	out.LastResults = append([]registry.DoctorRecord(nil), sess.LastResults...)
	out.Contacts = append([]contacts.Contact(nil), sess.Contacts...)
	return out
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// RecordSearch appends to the session's history and keeps the result set for
// the CSV export.
func (s *Store) RecordSearch(id string, params registry.SearchParams, results []registry.DoctorRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.SearchHistory = append(sess.SearchHistory, SearchEntry{
		Timestamp: time.Now(),
		Params:    params,
		Count:     len(results),
	})
	sess.LastResults = results
}

func (s *Store) SetTemplate(id, tmpl string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.CurrentTemplate = tmpl
	return true
}

func (s *Store) RecordSend(id string, total, successful int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.SendLogs = append(sess.SendLogs, SendLog{
		Timestamp:       time.Now(),
		TotalContacts:   total,
		SuccessfulSends: successful,
	})
}

// SetContacts replaces the session's uploaded contact list. Each upload
// supersedes the previous one.
func (s *Store) SetContacts(id string, rows []contacts.Contact) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return false
	}
	sess.Contacts = rows
	return true
}

// Contacts returns a copy of the session's uploaded contact list.
func (s *Store) Contacts(id string) []contacts.Contact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	out := make([]contacts.Contact, len(sess.Contacts))
	copy(out, sess.Contacts)
	return out
}

// LastResults returns a copy of the session's latest search results.
func (s *Store) LastResults(id string) []registry.DoctorRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || sess.LastResults == nil {
		return nil
	}
	out := make([]registry.DoctorRecord, len(sess.LastResults))
	copy(out, sess.LastResults)
	return out
}
