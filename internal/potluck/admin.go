package potluck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Lixing-Zhang/potluck/internal/auth"
	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/models"
)

// ErrDownloadInProgress is returned when an export is already running.
var ErrDownloadInProgress = errors.New("download already in progress")

// Confirm is asked before an entry is deleted. Returning false cancels the
// delete without contacting the backend.
type Confirm func(index int, e models.Entry) bool

// AdminMode reports whether the admin is logged in.
func (s *State) AdminMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminMode
}

// AdminMessage returns the outcome of the last admin action.
func (s *State) AdminMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adminMsg
}

// Editing returns the entry in edit mode, if any.
func (s *State) Editing() (Edit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.edit == nil {
		return Edit{}, false
	}
	return *s.edit, true
}

// EditMessage returns the outcome of the last failed save.
func (s *State) EditMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editMsg
}

// Downloading reports whether an export is in flight.
func (s *State) Downloading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloading
}

// Login asks the backend to confirm the admin password. On success the
// password is kept for later admin calls.
func (s *State) Login(ctx context.Context, password string) error {
	cred := auth.Password(password)

	s.mu.Lock()
	s.adminMsg = ""
	s.mu.Unlock()

	err := s.backend.Login(ctx, cred)

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case err == nil:
		s.creds.Set(cred)
		s.adminMode = true
		s.adminMsg = MsgAdminEnabled
		s.logger.Info("admin logged in")
	case errors.Is(err, backend.ErrNetwork):
		s.adminMsg = MsgNetworkError
	default:
		s.adminMsg = MsgInvalidPass
		s.logger.Info("admin login rejected", "error", err)
	}
	return err
}

// Logout leaves admin mode. The backend is not told; the held credential
// is simply dropped.
func (s *State) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds.Clear()
	s.adminMode = false
	s.adminMsg = ""
	s.edit = nil
	s.editMsg = ""
}

func (s *State) credentialLocked() (auth.Credential, error) {
	if !s.adminMode {
		return nil, ErrNotAdmin
	}
	cred, ok := s.creds.Current()
	if !ok {
		return nil, ErrNotAdmin
	}
	return cred, nil
}

// BeginEdit puts the entry at index (server order) into edit mode,
// replacing any edit already in progress.
func (s *State) BeginEdit(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.credentialLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(s.entries) {
		return ErrNoSuchEntry
	}
	s.edit = &Edit{Index: index, Draft: s.entries[index]}
	s.editMsg = ""
	return nil
}

// UpdateDraft replaces the edited values. Quantity is raised to at least 1.
func (s *State) UpdateDraft(e models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.edit == nil {
		return ErrNotEditing
	}
	e.Quantity = max(1, e.Quantity)
	s.edit.Draft = e
	return nil
}

// CancelEdit leaves edit mode and discards the draft.
func (s *State) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edit = nil
	s.editMsg = ""
}

// SaveEdit sends the draft to the backend. On failure the draft stays in
// edit mode so it can be retried.
func (s *State) SaveEdit(ctx context.Context) error {
	s.mu.Lock()
	cred, err := s.credentialLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if s.edit == nil {
		s.mu.Unlock()
		return ErrNotEditing
	}
	edit := *s.edit
	s.editMsg = ""
	s.mu.Unlock()

	draft := edit.Draft
	draft.Name = strings.TrimSpace(draft.Name)
	draft.Dish = strings.TrimSpace(draft.Dish)
	if draft.Name == "" {
		return ErrNameRequired
	}
	if draft.Dish == "" {
		return ErrDishRequired
	}

	err = s.backend.Edit(ctx, cred, edit.Index, draft)

	s.mu.Lock()
	if err != nil {
		s.editMsg = MsgEditFailed
		s.mu.Unlock()
		s.logger.Warn("edit failed", "index", edit.Index, "error", err)
		return err
	}
	s.edit = nil
	s.editMsg = ""
	s.adminMsg = MsgEntryUpdated
	s.mu.Unlock()

	s.logger.Info("entry edited", "index", edit.Index)
	_ = s.Load(ctx)
	return nil
}

// Delete removes the entry at index (server order) once confirm agrees.
// Any edit in progress is dropped after a successful delete, since the
// positions it refers to have shifted.
func (s *State) Delete(ctx context.Context, index int, confirm Confirm) error {
	s.mu.Lock()
	cred, err := s.credentialLocked()
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if index < 0 || index >= len(s.entries) {
		s.mu.Unlock()
		return ErrNoSuchEntry
	}
	entry := s.entries[index]
	s.mu.Unlock()

	if confirm == nil || !confirm(index, entry) {
		return ErrDeleteNotConfirmed
	}

	err = s.backend.Delete(ctx, cred, index)

	s.mu.Lock()
	if err != nil {
		if errors.Is(err, backend.ErrNetwork) {
			s.adminMsg = MsgNetworkError
		} else {
			s.adminMsg = MsgDeleteFailed
		}
		s.mu.Unlock()
		s.logger.Warn("delete failed", "index", index, "error", err)
		return err
	}
	s.adminMsg = MsgEntryDeleted
	s.edit = nil
	s.editMsg = ""
	s.mu.Unlock()

	s.logger.Info("entry deleted", "index", index)
	_ = s.Load(ctx)
	return nil
}

// Export downloads the spreadsheet and copies it to w. It returns the
// filename the download should be saved under.
func (s *State) Export(ctx context.Context, w io.Writer) (string, error) {
	s.mu.Lock()
	cred, err := s.credentialLocked()
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if s.downloading {
		s.mu.Unlock()
		return "", ErrDownloadInProgress
	}
	s.downloading = true
	s.mu.Unlock()

	data, err := s.backend.Download(ctx, cred)
	if err == nil {
		if _, werr := w.Write(data); werr != nil {
			err = fmt.Errorf("failed to write export: %w", werr)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.downloading = false
	if err != nil {
		if errors.Is(err, backend.ErrNetwork) {
			s.adminMsg = MsgNetworkError
		} else {
			s.adminMsg = MsgDownloadFailed
		}
		s.logger.Warn("export failed", "error", err)
		return "", err
	}
	s.logger.Info("export downloaded", "bytes", len(data))
	return ExportFilename, nil
}
