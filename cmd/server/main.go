package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/adityaprk/khatabook/internal/auth"
	"github.com/adityaprk/khatabook/internal/config"
	"github.com/adityaprk/khatabook/internal/middleware"
	"github.com/adityaprk/khatabook/internal/storage/sqlite"
	"github.com/adityaprk/khatabook/internal/web"
	"github.com/adityaprk/khatabook/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		// No .env is fine; the environment alone drives config.
		slog.Debug("no .env file found")
	}

	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	// Seed the in-memory credential store. It lives for the process only;
	// removing a user here is the revocation path for issued tokens.
	creds := auth.NewMemoryCredentials()
	if err := creds.Add(cfg.AdminUser, cfg.AdminPassword); err != nil {
		slog.Error("Failed to seed credentials", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDefaultPassword() {
		slog.Warn("Using the default admin password; set KHATABOOK_ADMIN_PASSWORD")
	}

	// A fresh signing secret per start: tokens cannot be forged from
	// source, and every restart invalidates outstanding sessions.
	secret, err := auth.NewSigningSecret()
	if err != nil {
		slog.Error("Failed to generate signing secret", "error", err)
		os.Exit(1)
	}
	tokens := auth.NewTokenManager(secret, cfg.SessionTTL)

	handler, err := web.NewHandler(store, creds, tokens)
	if err != nil {
		slog.Error("Failed to initialize web handler", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	handler.Routes(mux)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           middleware.Metrics(middleware.Logging(mux)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("Khatabook listening", "address", cfg.ListenAddr, "user", cfg.AdminUser)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
