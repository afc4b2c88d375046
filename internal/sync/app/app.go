package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/magsync/internal/sync/http"
	"github.com/aussiebroadwan/magsync/internal/sync/service"
	"github.com/aussiebroadwan/magsync/internal/sync/store"
	"github.com/aussiebroadwan/magsync/internal/sync/store/drivers/sqlite"
	"github.com/aussiebroadwan/magsync/pkg/allegro"
	"github.com/aussiebroadwan/magsync/pkg/baselinker"
	"github.com/aussiebroadwan/magsync/pkg/cryptox"
	"github.com/aussiebroadwan/magsync/pkg/retryx"
	"github.com/aussiebroadwan/magsync/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the sync service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	vault   *service.SettingsVault
	allegro *allegro.Client

	// Services and background workers
	tokenService *service.TokenService
	refresher    *allegro.Refresher
	printAgent   *service.PrintAgent
	syncer       *service.Syncer

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "sync-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initVault(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	// Start background workers
	app.refresher.Start()
	app.syncer.Start()
	if app.printAgent != nil {
		app.printAgent.Start()
	}

	app.logger.Info("sync service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down sync service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop background workers before the database goes away
	if app.printAgent != nil {
		app.printAgent.Stop()
	}
	app.syncer.Stop()
	app.refresher.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("sync service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initVault loads the sealing key and wraps the settings table.
func (app *Application) initVault() error {
	material, source, err := cryptox.LoadKey(app.cfg.SecretKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load sealing key: %w", err)
	}
	if source == "ephemeral" {
		app.logger.Warn("using an ephemeral sealing key; sealed settings will not survive a restart")
	} else {
		app.logger.Info("sealing key loaded", "source", source)
	}

	sealer, err := cryptox.NewSealer(material)
	if err != nil {
		return fmt.Errorf("failed to initialize sealer: %w", err)
	}
	app.vault = service.NewSettingsVault(app.db.Settings(), sealer)
	return nil
}

// initServices initializes the API clients and background workers.
func (app *Application) initServices() error {
	apiMetrics, err := retryx.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to register api metrics: %w", err)
	}

	allegroOpts := []allegro.Option{allegro.WithMetrics(apiMetrics)}
	if app.cfg.AllegroBaseURL != "" {
		allegroOpts = append(allegroOpts, allegro.WithBaseURL(app.cfg.AllegroBaseURL))
	}
	if app.cfg.AllegroAuthURL != "" {
		allegroOpts = append(allegroOpts, allegro.WithAuthURL(app.cfg.AllegroAuthURL))
	}
	app.allegro = allegro.NewClient(app.vault, allegroOpts...)

	app.tokenService = service.NewTokenService(app.vault, app.allegro, app.logger)
	app.tokenService.Margin = app.cfg.RefreshMargin

	refreshMetrics, err := allegro.NewRefreshMetrics()
	if err != nil {
		return fmt.Errorf("failed to register refresh metrics: %w", err)
	}
	app.refresher = allegro.NewRefresher(app.allegro, app.logger)
	app.refresher.Margin = app.cfg.RefreshMargin
	app.refresher.IdleInterval = app.cfg.IdleInterval
	app.refresher.Metrics = refreshMetrics

	syncMetrics, err := service.NewSyncMetrics()
	if err != nil {
		return fmt.Errorf("failed to register sync metrics: %w", err)
	}
	app.syncer = service.NewSyncer(app.db, app.allegro, app.logger)
	app.syncer.Interval = app.cfg.SyncInterval
	app.syncer.Metrics = syncMetrics

	// The print agent needs an order platform token; without one the queue
	// stays reachable over HTTP but nothing polls it.
	if app.cfg.BaselinkerToken == "" {
		app.logger.Info("print agent disabled, no BASELINKER_TOKEN configured")
		return nil
	}

	printMetrics, err := service.NewPrintMetrics()
	if err != nil {
		return fmt.Errorf("failed to register print metrics: %w", err)
	}
	orders := baselinker.NewClient(app.cfg.BaselinkerToken, baselinker.WithMetrics(apiMetrics))
	printer := &service.SpoolPrinter{Dir: app.cfg.PrintSpoolDir}

	app.printAgent = service.NewPrintAgent(app.db, orders, printer, app.logger)
	app.printAgent.PollInterval = app.cfg.PrintPollInterval
	app.printAgent.StatusID = app.cfg.PrintStatusID
	app.printAgent.NextStatusID = app.cfg.PrintNextStatusID
	app.printAgent.Metrics = printMetrics
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)

	// Wire services to router
	router.TokenService = app.tokenService
	router.Vault = app.vault
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
