package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/middleware"
	"github.com/Lixing-Zhang/potluck/internal/models"
	"github.com/Lixing-Zhang/potluck/internal/potluck"
	"github.com/Lixing-Zhang/potluck/internal/service"
)

const spreadsheetType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves admin login, edit, delete and export.
type AdminHandler struct {
	logger *slog.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(logger *slog.Logger) *AdminHandler {
	return &AdminHandler{logger: logger}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	if err := sess.State.Login(r.Context(), req.Password); err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, backend.ErrNetwork) {
			status = http.StatusBadGateway
		}
		view := renderView(r, sess)
		WriteJSON(w, status, ErrorResponse{Error: sess.State.AdminMessage(), View: &view}, h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.State.Logout()
	writeView(w, r, sess, h.logger)
}

// BeginEdit handles POST /api/admin/entries/{index}/edit
func (h *AdminHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	if err := sess.State.BeginEdit(index); err != nil {
		writeFailure(w, r, sess, err, "", h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

// UpdateDraft handles PUT /api/admin/edit
func (h *AdminHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var draft models.Entry
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if err := sess.State.UpdateDraft(draft); err != nil {
		writeFailure(w, r, sess, err, "", h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

// CancelEdit handles DELETE /api/admin/edit
func (h *AdminHandler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	sess.State.CancelEdit()
	writeView(w, r, sess, h.logger)
}

// SaveEdit handles POST /api/admin/edit/save
func (h *AdminHandler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := sess.State.SaveEdit(r.Context()); err != nil {
		writeFailure(w, r, sess, err, sess.State.EditMessage(), h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

// Delete handles POST /api/admin/entries/{index}/delete. The body must
// carry {"confirm": true}; anything else leaves the entry in place.
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}

	var req models.DeleteConfirmation
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}

	err := sess.State.Delete(r.Context(), index, func(int, models.Entry) bool {
		return req.Confirm
	})
	if err != nil {
		var msg string
		if !isLocal(err) {
			msg = sess.State.AdminMessage()
		}
		writeFailure(w, r, sess, err, msg, h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

// Export handles GET /api/admin/export and streams the spreadsheet as an
// attachment.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	name, err := sess.State.Export(r.Context(), &buf)
	if err != nil {
		var msg string
		if !isLocal(err) {
			msg = sess.State.AdminMessage()
		}
		writeFailure(w, r, sess, err, msg, h.logger)
		return
	}

	w.Header().Set("Content-Type", spreadsheetType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write export", "error", err)
	}
}

func (h *AdminHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.logger.Error("handler reached without a session", "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
	return sess, ok
}

func (h *AdminHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 0 {
		h.logger.Warn("invalid entry index", "index", raw)
		WriteError(w, http.StatusBadRequest, "Invalid index supplied", h.logger)
		return 0, false
	}
	return index, true
}

// isLocal reports whether err was raised before the backend was contacted.
func isLocal(err error) bool {
	return errors.Is(err, potluck.ErrNotAdmin) ||
		errors.Is(err, potluck.ErrNoSuchEntry) ||
		errors.Is(err, potluck.ErrDeleteNotConfirmed) ||
		errors.Is(err, potluck.ErrDownloadInProgress)
}
