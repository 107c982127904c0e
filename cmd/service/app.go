package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github-history-sync/internal/config"
	"github-history-sync/internal/database"
	"github-history-sync/internal/github"
	"github-history-sync/internal/lock"
	"github-history-sync/internal/syncer"
	"github-history-sync/internal/telemetry"
)

// app holds the wired components shared by the subcommands.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	store     *database.PgStore
	syncer    *syncer.Syncer
	telemetry *telemetry.Provider
	closers   []func()
}

func newLogger() (*slog.Logger, *slog.LevelVar) {
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, logLevel
}

// newApp loads configuration and connects every component. Callers must call close.
func newApp(ctx context.Context, configDir string) (*app, error) {
	logger, logLevel := newLogger()

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	a := &app{cfg: cfg, logger: logger}

	dbpool, err := pgxpool.New(ctx, cfg.DBURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	a.pool = dbpool
	a.closers = append(a.closers, dbpool.Close)
	if err := dbpool.Ping(ctx); err != nil {
		a.close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	a.store = database.NewStore(dbpool)
	logger.Info("Database connection established")

	locker, err := newLocker(ctx, cfg, logger)
	if err != nil {
		a.close()
		return nil, err
	}
	if c, ok := locker.(*lock.RedisLocker); ok {
		a.closers = append(a.closers, func() { _ = c.Close() })
	}

	a.telemetry, err = telemetry.NewProvider(cfg.MetricsEnabled, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	a.closers = append(a.closers, func() {
		_ = a.telemetry.Shutdown(context.Background())
	})
	metrics, err := telemetry.NewSyncMetrics(a.telemetry.MeterProvider)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create sync metrics: %w", err)
	}

	opts := []github.Option{
		github.WithRetryPolicy(cfg.MaxRetries, cfg.RetryDelay, cfg.RateLimitDelay),
		github.WithRequestRate(cfg.RequestsPerSecond),
	}
	if cfg.GithubAPI != "" {
		opts = append(opts, github.WithBaseURL(cfg.GithubAPI))
	}
	ghClient, err := github.NewClient(cfg.GithubToken, logger, opts...)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	a.syncer, err = syncer.NewSyncer(a.store, ghClient, locker, metrics, logger, syncer.Options{
		CommitBatchSize: cfg.CommitBatchSize,
		IssueBatchSize:  cfg.IssueBatchSize,
		ForwardPerPage:  cfg.ForwardPerPage,
		MaxComments:     cfg.MaxComments,
		LockTTL:         cfg.LockTTL,
	})
	if err != nil {
		a.close()
		return nil, fmt.Errorf("failed to create syncer: %w", err)
	}
	return a, nil
}

// newLocker returns the Redis lock backend when REDIS_URL is set, and the
// in-process one otherwise.
func newLocker(ctx context.Context, cfg *config.Config, logger *slog.Logger) (lock.Locker, error) {
	if cfg.RedisURL == "" {
		logger.Info("REDIS_URL not set, using in-process locks")
		return lock.NewMemoryLocker(), nil
	}
	locker, err := lock.NewRedisLocker(ctx, cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("Redis lock backend connected")
	return locker, nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
