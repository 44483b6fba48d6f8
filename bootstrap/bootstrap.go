// Package bootstrap wires adapters, services, and the HTTP server into a
// running application.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsekit/pulse/adapters/auth"
	"github.com/pulsekit/pulse/adapters/clock"
	"github.com/pulsekit/pulse/adapters/hasher"
	"github.com/pulsekit/pulse/adapters/idgen"
	"github.com/pulsekit/pulse/adapters/insights"
	"github.com/pulsekit/pulse/adapters/metrics"
	"github.com/pulsekit/pulse/adapters/sqlite"
	"github.com/pulsekit/pulse/app"
	"github.com/pulsekit/pulse/config"
	"github.com/pulsekit/pulse/ports"
	"github.com/pulsekit/pulse/web"
	"github.com/rs/zerolog"
)

// App is the assembled application.
type App struct {
	Logger  zerolog.Logger
	Config  *config.Config
	Holder  *config.Holder
	DB      *sqlite.DB
	Metrics *metrics.Collector

	Accounts  *app.AccountService
	Projects  *app.ProjectService
	Analytics *app.AnalyticsService
	Ingest    *app.IngestService
	Insights  *app.InsightsService

	httpServer *http.Server
	recorder   *BufferedRecorder
}

// New assembles the application from a loaded configuration.
func New(cfg *config.Config) (*App, error) {
	return build(cfg, nil)
}

// NewWithHotReload assembles the application with config hot reload: the
// file is watched and SIGHUP triggers a reload. Only fields listed by
// config.ReloadableFields take effect without a restart.
func NewWithHotReload(path string, logger zerolog.Logger) (*App, error) {
	holder, err := config.NewHolder(path, logger)
	if err != nil {
		return nil, err
	}

	a, err := build(holder.Get(), holder)
	if err != nil {
		holder.Stop()
		return nil, err
	}

	if err := holder.WatchFile(); err != nil {
		a.Logger.Warn().Err(err).Msg("config file watch unavailable")
	}
	holder.WatchSignals()

	return a, nil
}

func build(cfg *config.Config, holder *config.Holder) (*App, error) {
	logger := setupLogger(cfg)

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = auth.GenerateSecret()
		logger.Warn().Msg("auth.jwt_secret not set, generated an ephemeral one; sessions will not survive a restart")
	}

	db, err := sqlite.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		if holder != nil {
			holder.OnChange(func(*config.Config) {
				collector.ConfigReloads.Inc()
				collector.ConfigLastReload.SetToCurrentTime()
			})
		}
	}

	users := sqlite.NewUserStore(db)
	projects := sqlite.NewProjectStore(db)
	events := sqlite.NewEventStore(db)

	clk := clock.Real{}
	ids := idgen.UUID{}
	recorder := NewBufferedRecorder(events, cfg.Ingest.BatchSize, cfg.Ingest.FlushInterval, collector)

	primary, fallback := selectProviders(cfg, logger)

	a := &App{
		Logger:  logger,
		Config:  cfg,
		Holder:  holder,
		DB:      db,
		Metrics: collector,

		Accounts:  app.NewAccountService(users, hasher.NewBcrypt(0), ids, clk, logger),
		Projects:  app.NewProjectService(projects, events, ids, clk, logger),
		Analytics: app.NewAnalyticsService(events, clk, logger),
		recorder:  recorder,
	}
	a.Ingest = app.NewIngestService(projects, recorder, ids, clk, logger)
	a.Insights = app.NewInsightsService(a.Analytics, primary, fallback, logger)

	handler, err := web.NewHandler(web.Deps{
		Accounts:    a.Accounts,
		Projects:    a.Projects,
		Analytics:   a.Analytics,
		Ingest:      a.Ingest,
		Insights:    a.Insights,
		Events:      events,
		Metrics:     collector,
		MetricsPath: cfg.Metrics.Path,
		Logger:      logger,
		JWTSecret:   cfg.Auth.JWTSecret,
		SessionTTL:  cfg.Auth.SessionTTL,
		BaseURL:     cfg.Server.BaseURL,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init web handler: %w", err)
	}

	a.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

// selectProviders picks the insight providers for the configured mode.
// "deepseek" and "auto" with an API key use DeepSeek with the mock as
// fallback; everything else is mock-only so the insights page always works.
func selectProviders(cfg *config.Config, logger zerolog.Logger) (primary, fallback ports.InsightsProvider) {
	mock := insights.NewMock()

	useDeepSeek := cfg.Insights.Mode == "deepseek" ||
		(cfg.Insights.Mode == "auto" && cfg.Insights.APIKey != "")
	if !useDeepSeek {
		logger.Info().Str("provider", mock.Name()).Msg("insights provider selected")
		return mock, nil
	}

	ds := insights.NewDeepSeek(insights.DeepSeekConfig{
		BaseURL: cfg.Insights.BaseURL,
		APIKey:  cfg.Insights.APIKey,
		Model:   cfg.Insights.Model,
		Timeout: cfg.Insights.Timeout,
	})
	logger.Info().Str("provider", ds.Name()).Str("fallback", mock.Name()).Msg("insights provider selected")
	return ds, mock
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	errCh := make(chan error, 1)

	go func() {
		a.Logger.Info().Str("addr", a.httpServer.Addr).Msg("http server starting")
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigCh:
		a.Logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return a.Shutdown(ctx)
}

// Shutdown stops the server and flushes buffered events.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("http shutdown failed")
		firstErr = err
	}

	if err := a.recorder.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("event flush on shutdown failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	if a.Holder != nil {
		a.Holder.Stop()
	}

	if err := a.DB.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("database close failed")
		if firstErr == nil {
			firstErr = err
		}
	}

	a.Logger.Info().Msg("shutdown complete")
	return firstErr
}

// setupLogger builds the root logger from config.
func setupLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Logging.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
