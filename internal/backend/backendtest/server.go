// Package backendtest runs an in-memory stand-in for the entry backend so
// the client, view-model and handlers can be tested end to end.
package backendtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/potluck/internal/models"
)

// Password is the admin password the fake accepts unless overridden.
const Password = "admin123"

// Export is the body served by /admin/download.
var Export = []byte("PK\x03\x04potluck-export")

// Server is a fake backend. Its zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	entries    []models.Entry
	categories []string
	password   string
	submitted  []models.Entry
	calls      map[string]int

	failEdit     bool
	failDelete   bool
	rejectDetail string
}

// New starts a fake backend accepting the given categories. An empty list
// accepts any category.
func New(categories []string, entries ...models.Entry) *Server {
	s := &Server{
		entries:    slices.Clone(entries),
		categories: categories,
		password:   Password,
		calls:      make(map[string]int),
	}

	r := chi.NewRouter()
	r.Get("/entries", s.handleEntries)
	r.Post("/submit", s.handleSubmit)
	r.Post("/admin/login", s.handleLogin)
	r.Get("/admin/download", s.handleDownload)
	r.Post("/admin/delete", s.handleDelete)
	r.Post("/admin/edit", s.handleEdit)

	s.Server = httptest.NewServer(r)
	return s
}

// Entries returns a copy of the stored entries.
func (s *Server) Entries() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// SetEntries replaces the stored entries, simulating another writer.
func (s *Server) SetEntries(entries ...models.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = slices.Clone(entries)
}

// Submitted returns every entry received on /submit, in order.
func (s *Server) Submitted() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.submitted)
}

// FailEdits makes /admin/edit answer 500 while on is true.
func (s *Server) FailEdits(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failEdit = on
}

// FailDeletes makes /admin/delete answer 500 while on is true.
func (s *Server) FailDeletes(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete = on
}

// RejectSubmits makes /submit answer 400 with detail. An empty detail
// restores normal behaviour.
func (s *Server) RejectSubmits(detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectDetail = detail
}

// Calls returns how many times path was requested.
func (s *Server) Calls(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[path]
}

func (s *Server) count(r *http.Request) {
	s.calls[r.URL.Path]++
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)
	writeJSON(w, http.StatusOK, s.entries)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)

	var e models.Entry
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	if s.rejectDetail != "" {
		writeDetail(w, http.StatusBadRequest, s.rejectDetail)
		return
	}
	if len(s.categories) > 0 && !slices.Contains(s.categories, e.Category) {
		writeDetail(w, http.StatusBadRequest, "Invalid category")
		return
	}
	s.entries = append(s.entries, e)
	s.submitted = append(s.submitted, e)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry saved"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)

	if r.FormValue("password") != s.password {
		writeDetail(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)

	if r.URL.Query().Get("password") != s.password {
		writeDetail(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(Export)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)

	var req models.DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	if req.Password != s.password {
		writeDetail(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	if s.failDelete {
		writeDetail(w, http.StatusInternalServerError, "Delete failed")
		return
	}
	if req.Index < 0 || req.Index >= len(s.entries) {
		writeDetail(w, http.StatusNotFound, "Entry not found")
		return
	}
	s.entries = slices.Delete(s.entries, req.Index, req.Index+1)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry deleted"})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count(r)

	var req models.EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	if req.Password != s.password {
		writeDetail(w, http.StatusUnauthorized, "Invalid password")
		return
	}
	if s.failEdit {
		writeDetail(w, http.StatusInternalServerError, "Edit failed")
		return
	}
	if req.Index < 0 || req.Index >= len(s.entries) {
		writeDetail(w, http.StatusNotFound, "Entry not found")
		return
	}
	s.entries[req.Index] = models.Entry{
		Name:     req.Name,
		Category: req.Category,
		Dish:     req.Dish,
		Quantity: req.Quantity,
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Entry updated"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
