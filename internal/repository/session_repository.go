package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Lixing-Zhang/potluck/internal/metrics"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// SessionRepository defines the interface for browser session storage
type SessionRepository[V any] interface {
	Get(ctx context.Context, id string) (V, error)
	Save(ctx context.Context, id string, session V) error
	Delete(ctx context.Context, id string) error
	Len() int
}

// LRUSessionRepository implements SessionRepository with a bounded in-memory
// cache. When full, the least recently used session is dropped.
type LRUSessionRepository[V any] struct {
	cache  *lru.Cache[string, V]
	logger *slog.Logger
}

// NewLRUSessionRepository creates a repository holding at most capacity sessions
func NewLRUSessionRepository[V any](capacity int, logger *slog.Logger) (*LRUSessionRepository[V], error) {
	r := &LRUSessionRepository[V]{logger: logger}

	cache, err := lru.NewWithEvict[string, V](capacity, r.onEvict)
	if err != nil {
		return nil, fmt.Errorf("failed to create session cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Get returns the session stored under id and marks it recently used
func (r *LRUSessionRepository[V]) Get(ctx context.Context, id string) (V, error) {
	session, ok := r.cache.Get(id)
	if !ok {
		var zero V
		return zero, ErrSessionNotFound
	}
	return session, nil
}

// Save stores session under id, replacing any previous value
func (r *LRUSessionRepository[V]) Save(ctx context.Context, id string, session V) error {
	if evicted := r.cache.Add(id, session); evicted {
		r.logger.Info("session capacity reached, evicted least recently used session")
	}
	r.sync()
	return nil
}

// Delete removes the session stored under id. Deleting a missing session is
// not an error.
func (r *LRUSessionRepository[V]) Delete(ctx context.Context, id string) error {
	r.cache.Remove(id)
	r.sync()
	return nil
}

// Len returns the number of sessions held
func (r *LRUSessionRepository[V]) Len() int {
	return r.cache.Len()
}

func (r *LRUSessionRepository[V]) onEvict(id string, _ V) {
	r.logger.Debug("session dropped", "session_id", id)
}

func (r *LRUSessionRepository[V]) sync() {
	metrics.ActiveSessions.Set(float64(r.cache.Len()))
}
