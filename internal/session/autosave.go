package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

// SnapshotSource produces full ledger snapshots.
type SnapshotSource interface {
	Snapshot() *models.LedgerSnapshot
}

type PersistFunc func(ctx context.Context, snapshot *models.LedgerSnapshot) error

type AutoSaveStats struct {
	Saves     int
	Failures  int
	LastSaved time.Time
	LastError error
}

// AutoSaver pushes a full snapshot every interval. A failed save is logged
// and the next tick sends the then-current snapshot.
type AutoSaver struct {
	logger *slog.Logger

	mu      sync.Mutex
	source  SnapshotSource
	persist PersistFunc
	cancel  context.CancelFunc
	done    chan struct{}
	stats   AutoSaveStats
}

func NewAutoSaver(logger *slog.Logger) *AutoSaver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AutoSaver{logger: logger}
}

func (a *AutoSaver) Start(ctx context.Context, interval time.Duration, source SnapshotSource, persist PersistFunc) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.cancel != nil {
		return ErrAutoSaveRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.source = source
	a.persist = persist
	a.cancel = cancel
	a.done = make(chan struct{})

	go a.run(runCtx, interval, a.done)

	a.logger.Debug("Auto-save started", "interval", interval.String())
	return nil
}

func (a *AutoSaver) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = a.SaveNow(ctx)
		}
	}
}

// SaveNow runs one save cycle.
func (a *AutoSaver) SaveNow(ctx context.Context) error {
	a.mu.Lock()
	source, persist := a.source, a.persist
	a.mu.Unlock()

	if source == nil || persist == nil {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := source.Snapshot()
	err := persist(ctx, snapshot)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.stats.Failures++
		a.stats.LastError = err
		a.logger.Warn("Auto-save failed, will retry on next tick",
			"attempt_id", snapshot.AttemptID,
			"failures", a.stats.Failures,
			"error", err)
		return err
	}
	a.stats.Saves++
	a.stats.LastSaved = snapshot.TakenAt
	a.stats.LastError = nil
	return nil
}

// Stop halts the ticker and waits for an in-flight save to finish. No
// save starts after Stop returns.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel = nil
	a.done = nil
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	a.logger.Debug("Auto-save stopped")
}

func (a *AutoSaver) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

func (a *AutoSaver) Stats() AutoSaveStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
