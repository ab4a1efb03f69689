package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Lixing-Zhang/potluck/internal/middleware"
	"github.com/Lixing-Zhang/potluck/internal/service"
)

// RouterConfig carries what NewRouter needs.
type RouterConfig struct {
	Sessions    *service.SessionService
	Probe       BackendProbe
	CORSOrigins []string
	Logger      *slog.Logger
}

// NewRouter builds the HTTP API.
func NewRouter(cfg RouterConfig) http.Handler {
	healthHandler := NewHealthHandler(cfg.Probe, cfg.Logger)
	boardHandler := NewBoardHandler(cfg.Logger)
	adminHandler := NewAdminHandler(cfg.Logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(chimiddleware.Recoverer)

	// Sessions ride on a cookie, so origins must be explicit for
	// credentialed requests.
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Sessions, cfg.Logger))

		r.Get("/view", boardHandler.View)
		r.Post("/entries/reload", boardHandler.Reload)
		r.Put("/form", boardHandler.UpdateForm)
		r.Post("/submit", boardHandler.Submit)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", adminHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)

				r.Post("/logout", adminHandler.Logout)
				r.Post("/entries/{index}/edit", adminHandler.BeginEdit)
				r.Put("/edit", adminHandler.UpdateDraft)
				r.Delete("/edit", adminHandler.CancelEdit)
				r.Post("/edit/save", adminHandler.SaveEdit)
				r.Post("/entries/{index}/delete", adminHandler.Delete)
				r.Get("/export", adminHandler.Export)
			})
		})
	})

	return r
}
