package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/api"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/confluence"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/docs"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/index"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/mcpserver"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/sse"
	"github.com/aitzaz-ahmad/markdown-to-confluence/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	docsRoot := filepath.Join(cfg.Docs.RepoPath, cfg.Docs.RootDir)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_root", docsRoot),
		slog.String("output_dir", cfg.Docs.OutputDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the documentation source tree.
	store, err := storage.NewFS(docsRoot)
	if err != nil {
		return fmt.Errorf("init docs storage: %w", err)
	}

	// Ensure output directory exists.
	if err := os.MkdirAll(cfg.Docs.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Docs.OutputDir)
	if err != nil {
		return fmt.Errorf("init output storage: %w", err)
	}

	// Initialize SQLite page index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Scan the documentation tree and build the title index.
	tree, err := docs.Scan(store, cfg.Docs.AssetsDir, logger)
	if err != nil {
		return fmt.Errorf("scan docs tree: %w", err)
	}
	logger.Info("Documentation tree scanned", slog.Int("documents", tree.Len()))

	// Build the converter.
	layout := confluence.NewLeftSidebarPage(cfg.Layout.SidebarWidth, cfg.Layout.ContentWidth)
	conv, err := confluence.NewConverter(layout, tree.Title, confluence.WithAssetsDir(cfg.Docs.AssetsDir))
	if err != nil {
		return fmt.Errorf("init converter: %w", err)
	}

	// Run the initial conversion pass.
	if err := index.Sync(ctx, db, tree, conv, out, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// MCP stdio mode bypasses the HTTP stack entirely.
	if app.mcpStdio {
		logger.Info("Starting MCP stdio server")
		return mcpserver.New(store, db, conv).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API service and router.
	svc := api.NewService(db)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, store.Root())

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return index.Watch(gCtx, db, store, conv, out, cfg.Docs.AssetsDir, logger, func(kind, path string) {
			broker.PublishPageEvent(kind, path)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		broker.Close()
		cancel() // stops the watcher
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
