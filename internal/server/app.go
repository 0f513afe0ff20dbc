// Package server initializes and runs the application: database, migrations,
// domain services, the HTTP API and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"

	"github.com/drewsiph/sitekeeper/internal/cloudflare"
	"github.com/drewsiph/sitekeeper/internal/logging"
	"github.com/drewsiph/sitekeeper/internal/server/archive"
	"github.com/drewsiph/sitekeeper/internal/server/config"
	"github.com/drewsiph/sitekeeper/internal/server/httpapi"
	"github.com/drewsiph/sitekeeper/internal/server/publish"
	"github.com/drewsiph/sitekeeper/internal/server/repositories/repomanager"
	"github.com/drewsiph/sitekeeper/internal/server/stats"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	appCtx *AppContext
	db     *sql.DB
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger()
	appCtx := NewAppContext("system")

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("db migration error: %w", err)
	}

	media := cloudflare.NewClient(
		cfg.CloudflareAccountID, cfg.CloudflareAPIToken, cfg.CloudflareDeliveryHash,
		cloudflare.WithBaseURL(cfg.CloudflareAPIBaseURL),
		cloudflare.WithCDNHost(cfg.CDNHost),
	)

	mirror, err := archive.New(ctx, archive.Options{
		Region:    cfg.ArchiveRegion,
		Endpoint:  cfg.ArchiveEndpoint,
		Bucket:    cfg.ArchiveBucket,
		AccessKey: cfg.ArchiveAccessKey,
		SecretKey: cfg.ArchiveSecretKey,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("archive init error: %w", err)
	}

	var archiver publish.Archiver
	if mirror != nil {
		archiver = mirror
	}

	publisher := publish.NewService(media, archiver, logger)

	api := httpapi.NewServer(cfg, logger, publisher, stats.NewService(logger),
		manager.Drafts(db), manager.Settings(db))
	api.SetThemeState(appCtx)

	handler := handlers.CORS(
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
	)(api.Router())

	return &App{
		config: cfg,
		logger: logger,
		appCtx: appCtx,
		db:     db,
		server: &http.Server{Addr: cfg.EndpointAddr, Handler: handler},
	}, nil
}

// Run serves the API until the context is cancelled or a termination signal
// arrives, then shuts the server down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	if err := app.db.Close(); err != nil {
		return fmt.Errorf("db close error: %w", err)
	}
	return nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}
