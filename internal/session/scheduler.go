package session

// scheduler.go provides background cleanup of expired validation sessions.
//
// Sessions hold full dataset snapshots, so stale ones are purged on a
// schedule instead of accumulating. The scheduler is long-running and
// context-aware for graceful shutdown; individual cleanup failures are
// logged but do not stop the application.

import (
	"context"
	"log/slog"
	"time"
)

// CleanupConfig holds configuration for the session cleanup scheduler.
type CleanupConfig struct {
	SessionTTL    time.Duration // How long inactive sessions are kept
	CheckInterval time.Duration // How often to run
	BatchSize     int           // Sessions per cleanup batch
}

// StartCleanupScheduler starts a background goroutine that periodically
// deletes sessions whose last activity is older than SessionTTL.
// It runs immediately on start, then every CheckInterval.
// The scheduler stops when the context is cancelled.
func (s *Service) StartCleanupScheduler(ctx context.Context, cfg CleanupConfig) {
	slog.Info("session cleanup scheduler started",
		"session_ttl", cfg.SessionTTL,
		"check_interval", cfg.CheckInterval,
		"batch_size", cfg.BatchSize,
	)

	// Run immediately on startup
	s.runCleanupJob(ctx, cfg)

	// Then run periodically
	ticker := time.NewTicker(cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session cleanup scheduler stopped")
			return
		case <-ticker.C:
			s.runCleanupJob(ctx, cfg)
		}
	}
}

// runCleanupJob performs one cleanup cycle, draining full batches until
// fewer than BatchSize sessions remain past the cutoff.
func (s *Service) runCleanupJob(ctx context.Context, cfg CleanupConfig) {
	start := time.Now()
	cutoff := s.now().UTC().Add(-cfg.SessionTTL)

	var total int64
	for {
		deleted, err := s.store.DeleteExpired(ctx, cutoff, cfg.BatchSize)
		if err != nil {
			slog.Error("session cleanup failed", "error", err)
			return
		}
		total += deleted
		if deleted < int64(cfg.BatchSize) {
			break
		}
	}

	if total > 0 {
		slog.Info("expired sessions removed",
			"sessions_deleted", total,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
