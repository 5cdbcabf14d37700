package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/hostledger/internal/config"
	"github.com/JonMunkholm/hostledger/internal/core"
	_ "github.com/JonMunkholm/hostledger/internal/core/collections" // Register all collections
	"github.com/JonMunkholm/hostledger/internal/core/rules"
	"github.com/JonMunkholm/hostledger/internal/logging"
	"github.com/JonMunkholm/hostledger/internal/store/postgres"
	"github.com/JonMunkholm/hostledger/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"import_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
		"naive_split", cfg.Ingest.NaiveSplit,
	)

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}

	table, err := loadRules(cfg.Ingest.RulesFile)
	if err != nil {
		slog.Error("failed to load classification rules", "error", err)
		os.Exit(1)
	}
	slog.Info("classification rules loaded", "count", len(table), "collections", core.CollectionCount())

	split := core.SplitQuoted
	if cfg.Ingest.NaiveSplit {
		split = core.SplitNaive
	}

	store := postgres.New(pool)
	service := core.NewService(store, store, table, core.ServiceConfig{
		StoreTimeout:    cfg.Ingest.StoreTimeout,
		ValidateWorkers: cfg.Ingest.ValidateWorkers,
		Split:           split,
	})

	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.Audit().StartRetentionScheduler(jobCtx, core.RetentionConfig{
		RetentionDays: cfg.Audit.RetentionDays,
		CheckInterval: cfg.Audit.PurgeInterval,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("shutdown incomplete", "error", err)
		} else {
			slog.Info("all imports completed")
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	// Start returns as soon as Shutdown closes the listener.
	<-done
	slog.Info("server stopped")
}

func loadRules(path string) ([]core.ClassificationRule, error) {
	if path == "" {
		return rules.Default()
	}
	return rules.Load(path)
}
