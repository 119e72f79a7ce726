// Package bootstrap wires all dependencies and starts the application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/relstore/relstore/adapters/auth"
	"github.com/relstore/relstore/adapters/clock"
	"github.com/relstore/relstore/adapters/hasher"
	storehttp "github.com/relstore/relstore/adapters/http"
	"github.com/relstore/relstore/adapters/idgen"
	"github.com/relstore/relstore/adapters/memory"
	"github.com/relstore/relstore/adapters/metrics"
	"github.com/relstore/relstore/adapters/remote"
	"github.com/relstore/relstore/adapters/schemastatic"
	"github.com/relstore/relstore/adapters/sqlite"
	"github.com/relstore/relstore/app"
	"github.com/relstore/relstore/config"
	"github.com/relstore/relstore/ports"
)

// App represents the running application.
type App struct {
	Logger     zerolog.Logger
	DB         *sqlite.DB // nil when the memory driver is used
	HTTPServer *http.Server
	Metrics    *metrics.Collector
	Store      *app.StoreService
	Schemas    *schemastatic.Source

	holder *config.Holder
}

// New creates and initializes the application from a loaded configuration.
func New(cfg *config.Config) (*App, error) {
	logger := setupLogger(cfg.Logging)
	logger.Info().Msg("initializing relstore")

	a := &App{Logger: logger}

	var m *metrics.Collector
	if cfg.Metrics.Enabled {
		m = metrics.New()
		logger.Info().Msg("prometheus metrics enabled")
	}
	a.Metrics = m

	var (
		resources ports.ResourceStore
		handles   ports.HandleIndex
	)
	switch cfg.Database.Driver {
	case "memory":
		resources = memory.NewResourceStore()
		handles = memory.NewHandleIndex()
		logger.Info().Msg("using in-memory persistence")
	default:
		db, err := sqlite.Open(cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		a.DB = db
		resources = sqlite.NewResourceStore(db)
		handles = sqlite.NewHandleIndex(db)
		logger.Info().Str("dsn", cfg.Database.DSN).Msg("database ready")
	}

	// Built-in core schemas are always served; unknown types go to the
	// remote source when one is configured.
	a.Schemas = schemastatic.New()
	if cfg.Schemas.URL != "" {
		a.Schemas.WithFallback(remote.NewSchemaSource(cfg.Schemas.URL, cfg.Schemas.Timeout))
		logger.Info().Str("url", cfg.Schemas.URL).Msg("remote schema source configured")
	}

	a.Store = app.NewStoreService(app.Deps{
		Resources: resources,
		Schemas:   app.NewTypeCache(a.Schemas, m),
		Clock:     clock.Real{},
		IDs:       idgen.UUID{},
		Logger:    logger,
		Metrics:   m,
	})

	handler := storehttp.NewHandler(a.Store, storehttp.Options{
		Tokens:  auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Hasher:  hasher.NewBcrypt(cfg.Auth.BcryptCost),
		Handles: handles,
		Logger:  logger,
		Metrics: m,
	})

	a.HTTPServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// NewWithHotReload creates the application with config hot reload enabled.
// Changes to the config file or SIGHUP re-apply the reloadable fields.
func NewWithHotReload(path string) (*App, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	holder, err := config.NewHolder(path, logger)
	if err != nil {
		return nil, err
	}

	a, err := New(holder.Get())
	if err != nil {
		holder.Stop()
		return nil, err
	}
	a.holder = holder

	holder.OnChange(func(cfg *config.Config) {
		if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
			zerolog.SetGlobalLevel(level)
		}
	})

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("addr", a.HTTPServer.Addr).
			Msg("starting http server")
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	return a.Shutdown()
}

// Shutdown gracefully stops the application.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if a.holder != nil {
		a.holder.Stop()
	}

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(ctx); err != nil {
			a.Logger.Error().Err(err).Msg("http server shutdown error")
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error().Err(err).Msg("database close error")
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return nil
}

func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		return zerolog.New(output).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}
