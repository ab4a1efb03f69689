package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/backend/backendtest"
	"github.com/Lixing-Zhang/potluck/internal/layout"
	"github.com/Lixing-Zhang/potluck/internal/models"
	"github.com/Lixing-Zhang/potluck/internal/repository"
	"github.com/Lixing-Zhang/potluck/pkg/logger"
)

func newTestService(t *testing.T, entries ...models.Entry) (*SessionService, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New(nil, entries...)
	t.Cleanup(srv.Close)

	repo, err := repository.NewLRUSessionRepository[*Session](4, logger.Discard())
	require.NoError(t, err)

	client := backend.NewClient(srv.URL, logger.Discard())
	return NewSessionService(repo, client, models.DefaultCategories(), logger.Discard()), srv
}

func entries(n int) []models.Entry {
	out := make([]models.Entry, n)
	for i := range out {
		out[i] = models.Entry{Name: "N", Category: "Starters", Dish: "D", Quantity: 1}
	}
	return out
}

func TestSessionService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, entries(2)...)

	tests := []struct {
		name        string
		id          string
		wantCreated bool
	}{
		{name: "empty id", id: "", wantCreated: true},
		{name: "unknown id", id: "not-a-session", wantCreated: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, created, err := svc.GetOrCreate(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCreated, created)
			assert.NotEqual(t, tt.id, s.ID)
			assert.Len(t, s.State.Entries(), 2, "new sessions load entries")
		})
	}

	first, _, err := svc.GetOrCreate(ctx, "")
	require.NoError(t, err)
	again, created, err := svc.GetOrCreate(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, again)

	require.NoError(t, svc.End(ctx, first.ID))
	fresh, created, err := svc.GetOrCreate(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, created, "ended sessions are not found again")
	assert.NotEqual(t, first.ID, fresh.ID)
}

func TestSessionService_CreateWithBackendDown(t *testing.T) {
	svc, srv := newTestService(t, entries(2)...)
	srv.Close()

	s, err := svc.Create(context.Background())
	require.NoError(t, err)
	assert.Empty(t, s.State.Entries())
}

func TestSession_ViewPaging(t *testing.T) {
	svc, _ := newTestService(t, entries(12)...)
	s, err := svc.Create(context.Background())
	require.NoError(t, err)

	v := s.View(0, 0)
	assert.Equal(t, layout.Wide, v.Layout.Class)
	assert.Equal(t, 10, v.PageSize)
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Entries, 10)

	v = s.View(2, 0)
	assert.Equal(t, 2, v.Page)
	assert.Len(t, v.Entries, 2)

	// Same breakpoint: page is kept.
	v = s.View(0, 1100)
	assert.Equal(t, 2, v.Page)

	// Crossing into compact resets to page 1 even if a page is requested.
	v = s.View(2, 400)
	assert.Equal(t, layout.Compact, v.Layout.Class)
	assert.True(t, v.Layout.Tabs)
	assert.Equal(t, 5, v.PageSize)
	assert.Equal(t, 1, v.Page)
	assert.Equal(t, 3, v.Pages)

	// Out-of-range pages are clamped and remembered.
	v = s.View(9, 0)
	assert.Equal(t, 3, v.Page)
	assert.Equal(t, 3, s.Page())
}
