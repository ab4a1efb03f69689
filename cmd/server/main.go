package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/potluck/internal/backend"
	"github.com/Lixing-Zhang/potluck/internal/config"
	"github.com/Lixing-Zhang/potluck/internal/handlers"
	"github.com/Lixing-Zhang/potluck/internal/repository"
	"github.com/Lixing-Zhang/potluck/internal/service"
	"github.com/Lixing-Zhang/potluck/pkg/logger"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load .env: %v\n", err)
		os.Exit(1)
	}

	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	log.Info("starting potluck server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"backend_url", cfg.Backend.URL,
		"categories", len(cfg.Categories),
		"log_level", cfg.LogLevel,
	)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped gracefully")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := backend.NewClient(cfg.Backend.URL, log.With("component", "backend"),
		backend.WithTimeout(time.Duration(cfg.Backend.Timeout)*time.Second))

	sessionRepo, err := repository.NewLRUSessionRepository[*service.Session](cfg.Session.Capacity, log)
	if err != nil {
		return err
	}
	sessions := service.NewSessionService(sessionRepo, client, cfg.Categories, log)

	router := handlers.NewRouter(handlers.RouterConfig{
		Sessions: sessions,
		Probe: func(ctx context.Context) error {
			_, err := client.Entries(ctx)
			return err
		},
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      log,
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
