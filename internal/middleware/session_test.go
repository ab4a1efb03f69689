package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lixing-Zhang/potluck/pkg/logger"
)

func TestSession(t *testing.T) {
	sessions := newTestSessions(t)

	var seen []string
	handler := Session(sessions, logger.Discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		require.True(t, ok)
		seen = append(seen, sess.ID)
		w.WriteHeader(http.StatusNoContent)
	}))

	// First request gets a new session and a cookie.
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/view", nil))
	require.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]
	assert.Equal(t, SessionCookie, cookie.Name)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, seen[0], cookie.Value)

	// The cookie brings the same session back without a new cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/view", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Result().Cookies())
	assert.Equal(t, seen[0], seen[1])

	// An unknown id starts over.
	req = httptest.NewRequest(http.MethodGet, "/api/view", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale"})
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Len(t, w.Result().Cookies(), 1)
	assert.NotEqual(t, "stale", seen[2])
	assert.NotEqual(t, seen[0], seen[2])
}

func TestSessionFrom_Missing(t *testing.T) {
	_, ok := SessionFrom(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
