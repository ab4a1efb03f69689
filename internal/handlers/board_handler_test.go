package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/backend/backendtest"
	"github.com/Lixing-Zhang/potluck/internal/middleware"
	"github.com/Lixing-Zhang/potluck/internal/models"
	"github.com/Lixing-Zhang/potluck/internal/repository"
	"github.com/Lixing-Zhang/potluck/internal/service"
	"github.com/Lixing-Zhang/potluck/pkg/logger"
)

var testCategories = []models.Category{
	{Name: "Starters", Label: "1 tray", Max: 6},
	{Name: "Veg curry", Label: "1 pot", Max: 2},
	{Name: "Sweets", Label: "1 box", Max: 3},
}

// browser drives the router with a persistent session cookie.
type browser struct {
	t       *testing.T
	handler http.Handler
	cookie  *http.Cookie
}

func newBrowser(t *testing.T, entries ...models.Entry) (*browser, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New([]string{"Starters", "Veg curry", "Sweets"}, entries...)
	t.Cleanup(srv.Close)

	log := logger.Discard()
	client := backend.NewClient(srv.URL, log)
	repo, err := repository.NewLRUSessionRepository[*service.Session](16, log)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		Sessions: service.NewSessionService(repo, client, testCategories, log),
		Probe:    func(ctx context.Context) error { _, err := client.Entries(ctx); return err },
		Logger:   log,
	})
	return &browser{t: t, handler: router}, srv
}

func (b *browser) do(method, target string, body any) *httptest.ResponseRecorder {
	b.t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}

	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			b.cookie = c
		}
	}
	return w
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) service.BoardView {
	t.Helper()
	var v service.BoardView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&e))
	return e
}

func ptr[T any](v T) *T { return &v }

func TestBoard_View(t *testing.T) {
	b, _ := newBrowser(t,
		models.Entry{Name: "A", Category: "Starters", Dish: "Samosa", Quantity: 6},
		models.Entry{Name: "B", Category: "Sweets", Dish: "Kheer", Quantity: 1},
	)

	w := b.do(http.MethodGet, "/api/view", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, b.cookie)

	v := decodeView(t, w)
	assert.Equal(t, 2, v.TotalEntries)
	assert.Equal(t, []string{"Veg curry", "Sweets"}, v.Available)
	assert.Equal(t, "Veg curry", v.Form.Category)
	assert.Equal(t, "Sweets", v.Entries[0].Category, "most recent first")
	assert.Equal(t, 1, v.Entries[0].Index)
	assert.Equal(t, 10, v.PageSize)

	v = decodeView(t, b.do(http.MethodGet, "/api/view?width=320", nil))
	assert.True(t, v.Layout.Tabs)
	assert.Equal(t, 5, v.PageSize)
}

func TestBoard_SubmitFlow(t *testing.T) {
	b, srv := newBrowser(t, models.Entry{Name: "A", Category: "Starters", Dish: "Samosa", Quantity: 3})

	w := b.do(http.MethodPut, "/api/form", models.FormRequest{
		Name:     ptr("Ben"),
		Category: ptr("Starters"),
		Dish:     ptr("Pakora"),
		Quantity: ptr(10),
	})
	require.Equal(t, http.StatusOK, w.Code)
	v := decodeView(t, w)
	assert.Equal(t, 3, v.Form.Quantity)
	assert.Equal(t, 3, v.QuantityBound)

	w = b.do(http.MethodPost, "/api/submit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	v = decodeView(t, w)
	assert.Equal(t, "Entry saved!", v.FormMessage)
	assert.Equal(t, 2, v.TotalEntries)
	assert.NotContains(t, v.Available, "Starters")
	assert.Empty(t, v.Form.Name)

	require.Len(t, srv.Submitted(), 1)
	assert.Equal(t, 3, srv.Submitted()[0].Quantity)
}

func TestBoard_SubmitErrors(t *testing.T) {
	b, srv := newBrowser(t, models.Entry{Name: "A", Category: "Veg curry", Dish: "Dal", Quantity: 2})

	tests := []struct {
		name       string
		body       models.FormRequest
		reject     string
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing name",
			body:       models.FormRequest{Name: ptr(" "), Dish: ptr("Kheer"), Category: ptr("Sweets")},
			wantStatus: http.StatusBadRequest,
			wantError:  "name is required",
		},
		{
			name:       "full category",
			body:       models.FormRequest{Name: ptr("B"), Dish: ptr("Dal"), Category: ptr("Veg curry")},
			wantStatus: http.StatusBadRequest,
			wantError:  "category is not available",
		},
		{
			name:       "backend rejects with detail",
			body:       models.FormRequest{Name: ptr("B"), Dish: ptr("Kheer"), Category: ptr("Sweets")},
			reject:     "Sweets is full",
			wantStatus: http.StatusBadRequest,
			wantError:  "Sweets is full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv.RejectSubmits(tt.reject)
			defer srv.RejectSubmits("")

			w := b.do(http.MethodPost, "/api/submit", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantError, resp.Error)
			require.NotNil(t, resp.View)
		})
	}
	assert.Empty(t, srv.Submitted())
}

func TestBoard_SubmitErrorAfterSave(t *testing.T) {
	b, _ := newBrowser(t)

	w := b.do(http.MethodPost, "/api/submit", models.FormRequest{Name: ptr("A"), Dish: ptr("Kheer"), Category: ptr("Sweets")})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Entry saved!", decodeView(t, w).FormMessage)

	// The form was reset, so the name is blank again.
	w = b.do(http.MethodPost, "/api/submit", models.FormRequest{Dish: ptr("Ladoo")})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "name is required", resp.Error)
	assert.Empty(t, resp.View.FormMessage)
}

func TestBoard_SubmitNetworkError(t *testing.T) {
	b, srv := newBrowser(t)
	b.do(http.MethodGet, "/api/view", nil)
	srv.Close()

	w := b.do(http.MethodPost, "/api/submit", models.FormRequest{Name: ptr("A"), Dish: ptr("B"), Category: ptr("Sweets")})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Network error", resp.Error)
	assert.Equal(t, "Network error", resp.View.FormMessage)
}

func TestBoard_Reload(t *testing.T) {
	b, srv := newBrowser(t)
	v := decodeView(t, b.do(http.MethodGet, "/api/view", nil))
	assert.Equal(t, 0, v.TotalEntries)

	srv.SetEntries(models.Entry{Name: "Z", Category: "Sweets", Dish: "Ladoo", Quantity: 1})
	w := b.do(http.MethodPost, "/api/entries/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decodeView(t, w).TotalEntries)

	srv.Close()
	w = b.do(http.MethodPost, "/api/entries/reload", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, decodeView(t, w).TotalEntries)
}

func TestBoard_InvalidBody(t *testing.T) {
	b, _ := newBrowser(t)

	req := httptest.NewRequest(http.MethodPut, "/api/form", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	b.handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
