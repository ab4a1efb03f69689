package middleware

import (
	"net/http"
)

// RequireAdmin rejects requests whose session is not in admin mode.
// It must run after Session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFrom(r.Context())
		if !ok {
			http.Error(w, "Unauthorized: session required", http.StatusUnauthorized)
			return
		}

		if !sess.State.AdminMode() {
			http.Error(w, "Forbidden: admin login required", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
