// Package internal provides the main application initialization and runtime logic.
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

	"github.com/halvard/ansuz/internal/api"
	"github.com/halvard/ansuz/internal/imageservice"
	"github.com/halvard/ansuz/internal/inbox"
	"github.com/halvard/ansuz/internal/locale"
	"github.com/halvard/ansuz/internal/mcpserver"
	"github.com/halvard/ansuz/internal/naming"
	"github.com/halvard/ansuz/internal/sse"
	"github.com/halvard/ansuz/internal/storage"
	"github.com/halvard/ansuz/internal/vision"
	"github.com/halvard/ansuz/internal/webdav"
)

// components is the assembled service graph shared by every surface.
type components struct {
	store   storage.Provider
	dav     *webdav.Client
	ai      *vision.Client // nil when the naming service is unconfigured
	svc     *imageservice.Service
	catalog *locale.Catalog
}

func newLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.EffectiveLogLevel(),
	}))
}

// buildComponents wires storage, the remote clients, the naming
// strategies, and the pipeline. prompter and notifier may be nil.
func buildComponents(cfg *Config, prompter naming.Prompter, notifier imageservice.Notifier, logger *slog.Logger) (*components, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	catalog := locale.New(cfg.Language)

	dav := webdav.New(webdav.Config{
		BaseURL:      cfg.WebDAV.URL,
		Username:     cfg.WebDAV.Username,
		Password:     cfg.WebDAV.Password,
		Path:         cfg.WebDAV.Path,
		PublicPrefix: cfg.WebDAV.PublicPrefix,
	}, logger)

	tpl := naming.TemplateResolver{Template: cfg.Rename.Template}
	resolvers := map[string]naming.Resolver{
		RenameModeTemplate: tpl,
	}

	var ai *vision.Client
	if cfg.Vision.Configured() {
		ai = vision.New(vision.Config{
			APIKey:   cfg.Vision.APIKey,
			Endpoint: cfg.Vision.Endpoint,
			Model:    cfg.Vision.Model,
			Prompt:   cfg.Vision.Prompt,
			Compress: cfg.Vision.Compress,
		}, logger)
		resolvers[RenameModeAI] = naming.VisionResolver{Service: ai, Fallback: tpl, Logger: logger}
	}

	if prompter != nil {
		ir := naming.InteractiveResolver{Prompter: prompter, Default: tpl}
		if ai != nil {
			ir.Vision = ai
		}
		resolvers[RenameModeDialog] = ir
	}

	svc := imageservice.New(imageservice.Params{
		Store:       store,
		Uploader:    dav,
		Resolvers:   resolvers,
		Fallback:    tpl,
		Mode:        cfg.Rename.Mode,
		BatchMode:   cfg.Rename.BatchMode,
		DeleteLocal: cfg.Local.Disposition == DispositionDelete,
		Catalog:     catalog,
		Notifier:    notifier,
		Logger:      logger,
	})

	return &components{store: store, dav: dav, ai: ai, svc: svc, catalog: catalog}, nil
}

// redactedSettings maps the config to the client-visible settings shape.
// Credentials stay out.
func redactedSettings(cfg *Config) api.Settings {
	return api.Settings{
		WebDAVURL:       cfg.WebDAV.URL,
		WebDAVPath:      cfg.WebDAV.Path,
		PublicPrefix:    cfg.WebDAV.PublicPrefix,
		RenameMode:      cfg.Rename.Mode,
		BatchRenameMode: cfg.Rename.BatchMode,
		Template:        cfg.Rename.Template,
		AIEndpoint:      cfg.Vision.Endpoint,
		AIModel:         cfg.Vision.Model,
		AIConfigured:    cfg.Vision.Configured(),
		Language:        cfg.Language,
	}
}

// Run starts the HTTP server, the SSE broker, and the inbox watcher, and
// blocks until shutdown.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("webdav_url", cfg.WebDAV.URL),
		slog.String("rename_mode", cfg.Rename.Mode),
		slog.String("log_level", cfg.App.EffectiveLogLevel().String()))

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	c, err := buildComponents(cfg, nil, sse.Notify{Broker: broker}, logger)
	if err != nil {
		return err
	}

	// HTTP surfaces never block on a terminal; dialog mode falls back to
	// template naming inside the pipeline.
	var aiChecker api.Checker
	if c.ai != nil {
		aiChecker = c.ai
	}
	handler := api.NewHandler(c.svc, c.dav, aiChecker, c.catalog, redactedSettings(cfg))
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	g, gCtx := errgroup.WithContext(ctx)

	// Start inbox watcher when configured.
	if cfg.Vault.Inbox.Dir != "" {
		g.Go(func() error {
			return inbox.Watch(gCtx, c.svc, cfg.Vault.Path, inbox.Config{
				Dir:  cfg.Vault.Inbox.Dir,
				Note: cfg.Vault.Inbox.Note,
				Mode: cfg.Rename.BatchMode,
			}, logger)
		})
	}

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunUpload uploads one image file from the local filesystem into a note
// (the "paste" flow driven from the command line). cursor < 0 appends at
// the end of the note.
func RunUpload(ctx context.Context, opts []Option, imagePath, notePath string, cursor int, mode string) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := newLogger(app.config)
	c, err := buildComponents(app.config, app.prompter, nil, logger)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	if cursor < 0 {
		cursor = 1 << 30
	}
	res, err := c.svc.UploadNew(ctx, imageservice.PasteRequest{
		NotePath:     notePath,
		Cursor:       cursor,
		Data:         data,
		OriginalName: filepath.Base(imagePath),
		Mode:         mode,
	})
	if err != nil {
		return err
	}

	fmt.Printf(c.catalog.T("upload.success")+"\n", res.URL)
	return nil
}

// RunBatch uploads every not-yet-hosted image referenced by a note.
func RunBatch(ctx context.Context, opts []Option, notePath, mode string) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := newLogger(app.config)
	c, err := buildComponents(app.config, app.prompter, nil, logger)
	if err != nil {
		return err
	}

	res, err := c.svc.Batch(ctx, notePath, mode)
	if err != nil {
		return err
	}

	fmt.Printf(c.catalog.T("batch.done")+"\n", res.Uploaded, res.Failed, res.Skipped)
	return nil
}

// RunCheck probes the WebDAV store and, when configured, the naming
// service. A failing WebDAV probe is an error; a failing AI probe is
// reported but not fatal.
func RunCheck(ctx context.Context, opts []Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	logger := newLogger(app.config)
	c, err := buildComponents(app.config, nil, nil, logger)
	if err != nil {
		return err
	}

	if c.dav.TestConnection(ctx) {
		fmt.Println(c.catalog.T("check.webdav.ok"))
	} else {
		fmt.Println(c.catalog.T("check.webdav.bad"))
		return fmt.Errorf("webdav check failed")
	}

	switch {
	case c.ai == nil:
		fmt.Println(c.catalog.T("vision.unconfigured"))
	case c.ai.TestConnection(ctx):
		fmt.Println(c.catalog.T("check.vision.ok"))
	default:
		fmt.Println(c.catalog.T("check.vision.bad"))
	}
	return nil
}

// RunMCP serves the MCP tool surface on stdin/stdout.
func RunMCP(_ context.Context, opts []Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	// MCP logs must not pollute stdout (the protocol channel).
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: app.config.App.EffectiveLogLevel(),
	}))

	c, err := buildComponents(app.config, nil, nil, logger)
	if err != nil {
		return err
	}

	srv := mcpserver.New(c.svc, c.store, c.dav)
	return srv.ServeStdio()
}
