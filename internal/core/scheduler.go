package core

// scheduler.go provides background retention for the import log.
//
// The scheduler is long-running and context-aware for graceful shutdown. It
// logs progress and errors but does not fail the application if an
// individual purge fails.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds configuration for the retention scheduler.
// Zero values get defaults.
type RetentionConfig struct {
	RetentionDays int           // Days to keep import logs (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.RetentionDays <= 0 {
		c.RetentionDays = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// StartRetentionScheduler periodically purges old import log entries.
// It runs immediately on start, then every CheckInterval, and stops when
// the context is cancelled.
func (a *AuditService) StartRetentionScheduler(ctx context.Context, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("retention scheduler started",
		"retention_days", cfg.RetentionDays,
		"interval", cfg.CheckInterval,
	)

	a.runPurgeJob(ctx, cfg)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("retention scheduler stopped")
			return
		case <-ticker.C:
			a.runPurgeJob(ctx, cfg)
		}
	}
}

// runPurgeJob performs one purge cycle.
func (a *AuditService) runPurgeJob(ctx context.Context, cfg RetentionConfig) {
	start := time.Now()
	purged, err := a.Purge(ctx, time.Duration(cfg.RetentionDays)*24*time.Hour)
	if err != nil {
		slog.Error("import log purge failed", "error", err)
		return
	}
	slog.Info("purged import log entries",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
