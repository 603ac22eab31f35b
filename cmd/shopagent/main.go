// shopagent exposes one shopper session as MCP tools over streamable
// HTTP, for agent frontends that drive the cart, wishlist and order
// tracking conversationally.
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

	"shopengine/internal/api"
	"shopengine/internal/config"
	"shopengine/internal/middleware"
	"shopengine/internal/session"
	"shopengine/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Initialize structured logger
	logger := initLogger()

	// Load configuration
	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("configuration loaded",
		slog.String("store_id", cfg.StoreID),
		slog.String("environment", cfg.Environment),
		slog.String("api_domain", cfg.Store.APIDomain),
	)

	client := api.New(api.Config{
		BaseURL: cfg.Store.APIBaseURL,
		Token:   cfg.Store.APIToken,
	}, logger)

	// Check the storefront still speaks our protocol version before
	// serving anything.
	if err := client.CheckCompatibility(ctx); err != nil {
		return fmt.Errorf("storefront compatibility: %w", err)
	}

	store, err := storage.OpenSQLite(cfg.Store.StoragePath)
	if err != nil {
		return fmt.Errorf("opening snapshot store: %w", err)
	}
	defer store.Close()

	sess := session.New(client, store, logger)

	// Pull server wishlist state before the first tool call lands.
	// Non-fatal: the local snapshot still serves reads.
	if err := sess.RefreshWishlist(ctx); err != nil {
		logger.Warn("initial wishlist refresh failed", slog.String("error", err.Error()))
	}

	// Setup routes
	mux := http.NewServeMux()
	mux.Handle("/mcp", sess.NewMCPHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Apply middleware chain: recovery → request id → logging → handler
	// Recovery must be outermost to catch panics from logging middleware
	httpHandler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
	)(mux)

	// Create HTTP server with timeouts
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      httpHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel for shutdown signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Channel for server errors
	serverErr := make(chan error, 1)

	// Start server in goroutine
	go func() {
		logger.Info("agent server starting",
			slog.String("port", cfg.Port),
			slog.String("session_id", sess.ID()),
		)
		serverErr <- server.ListenAndServe()
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-serverErr:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-shutdown:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		// Give outstanding requests time to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			// Force close if graceful shutdown fails
			server.Close()
			return fmt.Errorf("shutdown error: %w", err)
		}
	}

	logger.Info("server stopped")
	return nil
}

// initLogger creates a structured logger configured for the environment.
// Production uses JSON format for GCP Cloud Logging compatibility.
// Development uses text format for readability.
func initLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
		// Add source location in debug mode
		AddSource: level == slog.LevelDebug,
	}

	// JSON for production (Cloud Logging compatible), text for development
	if os.Getenv("ENVIRONMENT") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
