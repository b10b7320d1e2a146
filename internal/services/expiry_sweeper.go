package services

import (
	"context"
	"log/slog"
	"time"
)

// ExpirySweeper periodically auto-submits attempts whose students never came
// back after the deadline.
type ExpirySweeper struct {
	attempts AttemptService
	interval time.Duration
	logger   *slog.Logger
}

func NewExpirySweeper(attempts AttemptService, interval time.Duration, logger *slog.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		attempts: attempts,
		interval: interval,
		logger:   logger,
	}
}

// Run sweeps until ctx is cancelled. It returns nil on shutdown.
func (w *ExpirySweeper) Run(ctx context.Context) error {
	w.logger.Info("Expiry sweeper started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Expiry sweeper stopped")
			return nil
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpirySweeper) sweep(ctx context.Context) {
	count, err := w.attempts.ExpireOverdue(ctx)
	if err != nil && ctx.Err() == nil {
		w.logger.Error("Expiry sweep failed", "error", err, "expired", count)
	}
}
