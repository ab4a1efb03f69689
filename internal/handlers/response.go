package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/potluck"
	"github.com/Lixing-Zhang/potluck/internal/service"
)

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data interface{}, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, message string, logger *slog.Logger) {
	WriteJSON(w, status, ErrorResponse{Error: message}, logger)
}

// ErrorResponse is the body of every failed API call. View is the refreshed
// board when the failure left state worth showing (a message, a kept draft).
type ErrorResponse struct {
	Error string             `json:"error"`
	View  *service.BoardView `json:"view,omitempty"`
}

// writeFailure writes err with the status it maps to and the current view.
// message overrides err's text when non-empty.
func writeFailure(w http.ResponseWriter, r *http.Request, sess *service.Session, err error, message string, logger *slog.Logger) {
	if message == "" {
		message = errorMessage(err)
	}
	view := renderView(r, sess)
	WriteJSON(w, statusFor(err), ErrorResponse{Error: message, View: &view}, logger)
}

// writeView writes the board as the caller currently sees it.
func writeView(w http.ResponseWriter, r *http.Request, sess *service.Session, logger *slog.Logger) {
	WriteJSON(w, http.StatusOK, renderView(r, sess), logger)
}

// renderView reads the optional page and width query parameters. Invalid
// values are treated as absent.
func renderView(r *http.Request, sess *service.Session) service.BoardView {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	return sess.View(page, width)
}

// statusFor maps view-model and backend errors to HTTP status codes.
// Backend 4xx answers pass through; anything else from the backend is 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, potluck.ErrNameRequired),
		errors.Is(err, potluck.ErrDishRequired),
		errors.Is(err, potluck.ErrCategoryUnavailable),
		errors.Is(err, potluck.ErrDeleteNotConfirmed):
		return http.StatusBadRequest
	case errors.Is(err, potluck.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, potluck.ErrNoSuchEntry):
		return http.StatusNotFound
	case errors.Is(err, potluck.ErrNotEditing),
		errors.Is(err, potluck.ErrDownloadInProgress):
		return http.StatusConflict
	case errors.Is(err, backend.ErrNetwork):
		return http.StatusBadGateway
	}

	var se *backend.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 {
		return se.StatusCode
	}
	return http.StatusBadGateway
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, backend.ErrNetwork):
		return potluck.MsgNetworkError
	case backend.Detail(err) != "":
		return backend.Detail(err)
	}
	return err.Error()
}
