package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"journeyd/internal/archive"
	"journeyd/internal/config"
	"journeyd/internal/database"
	"journeyd/internal/database/migrations"
	"journeyd/internal/httpapi"
	"journeyd/internal/journey"
)

// App is the application layer between the CLI and the journey service.
// It constructs all dependencies from config and manages their lifecycle
// on Close.
type App struct {
	cfg      *config.Config
	store    *database.SQLiteStore
	archiver journey.Archiver
	service  *journey.Service
	logger   journey.Logger
	logFile  *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := database.NewStoreFromConfig(cfg.Database, journey.RealClock{})
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	if err := store.CheckMigrations(); err != nil {
		store.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	archiver, err := newArchiver(ctx, cfg, store)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating archiver: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	logger := &slogAdapter{l: slogger}
	svc := journey.NewService(store, archiver, logger, journey.RealClock{}, journey.UUIDGenerator{})

	return &App{
		cfg:      cfg,
		store:    store,
		archiver: archiver,
		service:  svc,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

// newArchiver picks the snapshot sink. The "database" type writes through the
// store's own pool, so it cannot come from the archive factory.
func newArchiver(ctx context.Context, cfg *config.Config, store *database.SQLiteStore) (journey.Archiver, error) {
	if cfg.Archive.Type == "" || cfg.Archive.Type == "database" {
		return database.NewSnapshotWriter(store), nil
	}
	return archive.NewArchiverFromConfig(ctx, cfg.Archive)
}

// Service returns the wired journey service.
func (a *App) Service() *journey.Service { return a.service }

// Logger returns the application logger.
func (a *App) Logger() journey.Logger { return a.logger }

// Router builds the HTTP handler over the wired service.
func (a *App) Router() http.Handler {
	h := httpapi.NewHandler(a.service, a.logger)
	return httpapi.NewRouter(h, a.cfg.Server.AllowedOrigins)
}

// Migrate opens the configured database, brings its schema to the latest
// version, and closes it again. It is separate from NewApp because NewApp
// refuses to start against an out-of-date schema.
func Migrate(cfg *config.Config) error {
	store, err := database.NewStoreFromConfig(cfg.Database, journey.RealClock{})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	defer store.Close()

	if err := migrations.MigrateUp(store.DB()); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// Close closes all resources.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
