package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/potluck/internal/layout"
	"github.com/Lixing-Zhang/potluck/internal/models"
	"github.com/Lixing-Zhang/potluck/internal/potluck"
	"github.com/Lixing-Zhang/potluck/internal/repository"
)

// Session is one browser's board: its view-model plus the presentation
// state (layout and current page) that is not shared with the backend.
type Session struct {
	ID    string
	State *potluck.State

	layout *layout.Observer

	mu   sync.Mutex
	page int
}

// BoardView is what a browser renders.
type BoardView struct {
	potluck.View
	Layout layout.Layout `json:"layout"`
}

func newSession(id string, state *potluck.State, observer *layout.Observer) *Session {
	s := &Session{ID: id, State: state, layout: observer, page: 1}
	observer.Subscribe(func(layout.Layout) {
		s.mu.Lock()
		s.page = 1
		s.mu.Unlock()
	})
	return s
}

// View renders the board. A positive width is reported to the layout
// observer first; when it crosses a breakpoint the page resets to 1 and the
// requested page is ignored. A page of 0 keeps the current page.
func (s *Session) View(page, width int) BoardView {
	before := s.layout.Current()
	current := s.layout.Resize(width)

	s.mu.Lock()
	defer s.mu.Unlock()
	if page > 0 && current == before {
		s.page = page
	}
	v := s.State.View(s.page, current.PageSize)
	s.page = v.Page
	return BoardView{View: v, Layout: current}
}

// Page returns the current page.
func (s *Session) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// SessionService creates and finds sessions
type SessionService struct {
	repo        repository.SessionRepository[*Session]
	backend     potluck.Backend
	categories  []models.Category
	breakpoints layout.Breakpoints
	logger      *slog.Logger
}

// NewSessionService creates a new session service
func NewSessionService(repo repository.SessionRepository[*Session], backend potluck.Backend, categories []models.Category, logger *slog.Logger) *SessionService {
	return &SessionService{
		repo:        repo,
		backend:     backend,
		categories:  categories,
		breakpoints: layout.DefaultBreakpoints,
		logger:      logger,
	}
}

// Create starts a new session and loads the entry list. A failed load is
// logged and leaves the board empty; it does not fail the session.
func (s *SessionService) Create(ctx context.Context) (*Session, error) {
	id := uuid.NewString()
	state := potluck.New(s.backend, s.categories, s.logger.With("session_id", id))
	session := newSession(id, state, layout.NewObserver(s.breakpoints, layout.DefaultWidth))

	if err := state.Load(ctx); err != nil {
		s.logger.Warn("initial load failed", "session_id", id, "error", err)
	}
	if err := s.repo.Save(ctx, id, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Debug("session created", "session_id", id)
	return session, nil
}

// GetOrCreate returns the session with the given id, or a new one when id is
// empty or unknown. created reports whether a new session was made.
func (s *SessionService) GetOrCreate(ctx context.Context, id string) (session *Session, created bool, err error) {
	if id != "" {
		session, err = s.repo.Get(ctx, id)
		if err == nil {
			return session, false, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return nil, false, err
		}
	}
	session, err = s.Create(ctx)
	if err != nil {
		return nil, false, err
	}
	return session, true, nil
}

// End drops a session.
func (s *SessionService) End(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
