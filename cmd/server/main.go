package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/inamate/geoviz/internal/access"
	"github.com/inamate/geoviz/internal/api"
	"github.com/inamate/geoviz/internal/config"
	"github.com/inamate/geoviz/internal/db"
	"github.com/inamate/geoviz/internal/session"
	"github.com/inamate/geoviz/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scenes live in Postgres when a database is configured, in memory otherwise
	var repo store.Repository
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		repo = store.NewPostgres(pool)
		slog.Info("using postgres scene store")
	} else {
		repo = store.NewMemory()
		slog.Warn("DATABASE_URL not set, scenes are kept in memory")
	}

	sceneService := store.NewService(repo)
	accessService := access.NewService(cfg.TokenSecret, cfg.TokenTTL)

	hub := session.NewHub()
	go hub.Run(ctx)

	handler := api.NewHandler(sceneService, accessService, hub, api.Options{
		MaxSceneBytes: cfg.MaxSceneBytes,
		CanvasWidth:   cfg.CanvasWidth,
		CanvasHeight:  cfg.CanvasHeight,
		Origins:       cfg.Origins(),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Close viewing sessions first; hijacked connections are not
		// tracked by Shutdown
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
