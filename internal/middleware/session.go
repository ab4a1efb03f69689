package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/potluck/internal/service"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "potluck_session"

type sessionKey struct{}

// Session attaches the caller's session to the request context, creating one
// (and setting the cookie) when the request carries none or an expired one.
func Session(svc *service.SessionService, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookie); err == nil {
				id = c.Value
			}

			sess, created, err := svc.GetOrCreate(r.Context(), id)
			if err != nil {
				logger.Error("failed to start session", "error", err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if created {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sess.ID,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *service.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFrom returns the session attached by Session.
func SessionFrom(ctx context.Context) (*service.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*service.Session)
	return sess, ok && sess != nil
}
