package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/potluck/internal/middleware"
	"github.com/Lixing-Zhang/potluck/internal/models"
	"github.com/Lixing-Zhang/potluck/internal/service"
)

// BoardHandler serves the participant side of the board: the view, the
// staged form and submissions.
type BoardHandler struct {
	logger *slog.Logger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(logger *slog.Logger) *BoardHandler {
	return &BoardHandler{logger: logger}
}

// View handles GET /api/view?page=&width=
func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	writeView(w, r, sess, h.logger)
}

// Reload handles POST /api/entries/reload. A failed load is not an error
// for the caller: the board just shows no entries.
func (h *BoardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := sess.State.Load(r.Context()); err != nil {
		h.logger.Warn("reload failed", "session_id", sess.ID, "error", err)
	}
	writeView(w, r, sess, h.logger)
}

// UpdateForm handles PUT /api/form
func (h *BoardHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.FormRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if err := applyForm(sess, req); err != nil {
		writeFailure(w, r, sess, err, "", h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

// Submit handles POST /api/submit. Fields in the body are staged first.
func (h *BoardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.FormRequest
	if err := decodeOptional(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if err := applyForm(sess, req); err != nil {
		writeFailure(w, r, sess, err, "", h.logger)
		return
	}

	if err := sess.State.Submit(r.Context()); err != nil {
		msg := sess.State.FormMessage()
		if msg == "" {
			msg = errorMessage(err)
		}
		writeFailure(w, r, sess, err, msg, h.logger)
		return
	}
	writeView(w, r, sess, h.logger)
}

func (h *BoardHandler) session(w http.ResponseWriter, r *http.Request) (*service.Session, bool) {
	sess, ok := middleware.SessionFrom(r.Context())
	if !ok {
		h.logger.Error("handler reached without a session", "path", r.URL.Path)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.logger)
	}
	return sess, ok
}

// applyForm stages the fields present in req. The category goes first so
// the quantity is clamped against the new category's remaining capacity.
func applyForm(sess *service.Session, req models.FormRequest) error {
	st := sess.State
	if req.Name != nil {
		st.SetName(*req.Name)
	}
	if req.Dish != nil {
		st.SetDish(*req.Dish)
	}
	if req.Category != nil {
		if err := st.SelectCategory(*req.Category); err != nil {
			return err
		}
	}
	if req.Quantity != nil {
		st.SetQuantity(*req.Quantity)
	}
	return nil
}

// decodeOptional decodes a JSON body into v. An empty body is accepted.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
