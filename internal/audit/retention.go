package audit

// retention.go runs the query log cleanup job.
//
// The job runs once on start and then every CheckInterval until the context
// is cancelled. A failed purge is logged and retried on the next tick.

import (
	"context"
	"log/slog"
	"time"
)

// RetentionConfig holds settings for the retention job.
type RetentionConfig struct {
	Days          int           // Days to keep (default: 90)
	CheckInterval time.Duration // How often to run (default: 24h)
}

func (c RetentionConfig) withDefaults() RetentionConfig {
	if c.Days <= 0 {
		c.Days = 90
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = 24 * time.Hour
	}
	return c
}

// purger is implemented by *Store.
type purger interface {
	Purge(ctx context.Context, days int) (int64, error)
}

// StartRetention blocks running the retention job until ctx is cancelled.
func StartRetention(ctx context.Context, store purger, cfg RetentionConfig) {
	cfg = cfg.withDefaults()
	slog.Info("query log retention started",
		"retention_days", cfg.Days,
		"check_interval", cfg.CheckInterval.String(),
	)

	runPurge(ctx, store, cfg.Days)

	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("query log retention stopped")
			return
		case <-ticker.C:
			runPurge(ctx, store, cfg.Days)
		}
	}
}

func runPurge(ctx context.Context, store purger, days int) {
	start := time.Now()
	purged, err := store.Purge(ctx, days)
	if err != nil {
		slog.Error("query log purge failed", "error", err)
		return
	}
	slog.Info("purged query log entries",
		"entries_purged", purged,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
