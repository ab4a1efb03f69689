// Package potluck is the view-model behind the potluck sign-up board.
//
// A State holds one user's view: the last entry snapshot fetched from the
// backend, the staged submission form, and the admin session. All derived
// values (category totals, remaining capacity, pagination) are recomputed
// from the snapshot; the backend stays the source of truth and is re-read
// after every successful mutation.
package potluck

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/Lixing-Zhang/potluck/internal/auth"
	"github.com/Lixing-Zhang/potluck/internal/models"
)

// Backend is the remote entry store.
type Backend interface {
	Entries(ctx context.Context) ([]models.Entry, error)
	Submit(ctx context.Context, e models.Entry) error
	Login(ctx context.Context, cred auth.Credential) error
	Download(ctx context.Context, cred auth.Credential) ([]byte, error)
	Delete(ctx context.Context, cred auth.Credential, index int) error
	Edit(ctx context.Context, cred auth.Credential, index int, e models.Entry) error
}

// Validation and admin errors
var (
	ErrNameRequired        = errors.New("name is required")
	ErrDishRequired        = errors.New("dish is required")
	ErrCategoryUnavailable = errors.New("category is not available")
	ErrNotAdmin            = errors.New("admin login required")
	ErrNoSuchEntry         = errors.New("no entry at that position")
	ErrNotEditing          = errors.New("no entry is being edited")
	ErrDeleteNotConfirmed  = errors.New("delete was not confirmed")
)

// User-facing messages
const (
	MsgSaved          = "Entry saved!"
	MsgSaveFailed     = "Error saving entry"
	MsgNetworkError   = "Network error"
	MsgAdminEnabled   = "Admin mode enabled"
	MsgInvalidPass    = "Invalid password"
	MsgDownloadFailed = "Download failed"
	MsgEditFailed     = "Failed to edit entry"
	MsgDeleteFailed   = "Failed to delete entry"
	MsgEntryUpdated   = "Entry updated"
	MsgEntryDeleted   = "Entry deleted"
)

// ExportFilename is the name offered for the spreadsheet download.
const ExportFilename = "potluck_data.xlsx"

// Form is the staged submission.
type Form struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

// Edit is the entry currently in edit mode.
type Edit struct {
	// Index is the entry's position in server order.
	Index int          `json:"index"`
	Draft models.Entry `json:"draft"`
}

// State is one user's view of the board. It is safe for concurrent use; the
// lock is never held across a backend call, so Loading and Downloading can
// be observed while a request is in flight.
type State struct {
	backend    Backend
	categories []models.Category
	creds      *auth.Holder
	logger     *slog.Logger

	mu          sync.Mutex
	entries     []models.Entry
	loading     bool
	form        Form
	formMsg     string
	adminMode   bool
	adminMsg    string
	edit        *Edit
	editMsg     string
	downloading bool
}

// New creates an empty State. The first category is preselected; call Load
// to fetch the entries.
func New(backend Backend, categories []models.Category, logger *slog.Logger) *State {
	s := &State{
		backend:    backend,
		categories: slices.Clone(categories),
		creds:      auth.NewHolder(),
		logger:     logger,
		entries:    []models.Entry{},
		form:       Form{Quantity: 1},
	}
	s.reconcileLocked()
	return s
}

// Categories returns the configured categories.
func (s *State) Categories() []models.Category {
	return slices.Clone(s.categories)
}

// Load replaces the snapshot with the backend's entry list. Any failure
// leaves an empty snapshot and is returned to the caller.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	entries, err := s.backend.Entries(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.logger.Warn("failed to load entries", "error", err)
		entries = []models.Entry{}
	}
	s.entries = entries
	if s.edit != nil && s.edit.Index >= len(s.entries) {
		s.edit = nil
		s.editMsg = ""
	}
	s.reconcileLocked()
	return err
}

// Entries returns a copy of the snapshot in server order.
func (s *State) Entries() []models.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.entries)
}

// Loading reports whether a Load is in flight.
func (s *State) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Summary returns the per-category totals of the current snapshot.
func (s *State) Summary() []CategorySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.categories, s.entries)
}

// reconcileLocked re-applies the category fallback and the quantity clamp
// after the snapshot or the selection changed.
func (s *State) reconcileLocked() {
	summary := Summarize(s.categories, s.entries)
	s.form.Category = fallbackCategory(AvailableCategories(summary), s.form.Category)
	s.form.Quantity = ClampQuantity(s.form.Quantity, QuantityBound(summary, s.form.Category))
}
