package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestRoutePattern(t *testing.T) {
	var got string
	r := chi.NewRouter()
	r.Post("/api/admin/entries/{index}/delete", func(w http.ResponseWriter, req *http.Request) {
		got = RoutePattern(req)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/entries/3/delete", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "/api/admin/entries/{index}/delete", got)
}

func TestRoutePattern_NoRouter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	assert.Equal(t, "unmatched", RoutePattern(req))
}
