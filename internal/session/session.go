package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

// Persistence is the server side of a running session.
type Persistence interface {
	SaveAttemptSnapshot(ctx context.Context, attemptID uint, snapshot *models.LedgerSnapshot) error
	SubmitAttempt(ctx context.Context, attemptID uint, payload *models.SubmissionPayload) (*models.ScoreResult, error)
}

type State string

const (
	StateReady      State = "ready"
	StateActive     State = "active"
	StateSubmitting State = "submitting"
	StateClosed     State = "closed"
)

const DefaultAutoSaveInterval = 30 * time.Second

type Config struct {
	AttemptID uint
	Questions []models.PublicQuestion
	Duration  time.Duration
	// Deadline, when set, anchors the clock to the server's deadline.
	Deadline         time.Time
	AutoSaveInterval time.Duration
	Now              func() time.Time
	Logger           *slog.Logger
}

// Session owns the state of one running attempt: clock, ledger, navigation
// and auto-save. Manual and timer-triggered submits share one path.
type Session struct {
	attemptID   uint
	questions   []models.PublicQuestion
	duration    time.Duration
	deadline    time.Time
	interval    time.Duration
	now         func() time.Time
	logger      *slog.Logger
	persistence Persistence

	clock  *Clock
	ledger *Ledger
	nav    *Navigator
	saver  *AutoSaver

	mu     sync.Mutex
	state  State
	runCtx context.Context
	result *models.ScoreResult
}

func New(cfg Config, persistence Persistence) (*Session, error) {
	if len(cfg.Questions) == 0 {
		return nil, errors.New("session requires at least one question")
	}
	if cfg.Duration <= 0 {
		return nil, errors.New("session duration must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.AutoSaveInterval <= 0 {
		cfg.AutoSaveInterval = DefaultAutoSaveInterval
	}

	logger := cfg.Logger.With("attempt_id", cfg.AttemptID)
	ledger := NewLedger(cfg.Questions)

	return &Session{
		attemptID:   cfg.AttemptID,
		questions:   cfg.Questions,
		duration:    cfg.Duration,
		deadline:    cfg.Deadline,
		interval:    cfg.AutoSaveInterval,
		now:         cfg.Now,
		logger:      logger,
		persistence: persistence,
		clock:       NewClock(cfg.Now),
		ledger:      ledger,
		nav:         NewNavigator(ledger, cfg.Now),
		saver:       NewAutoSaver(logger),
		state:       StateReady,
	}, nil
}

// Start begins a fresh session at the first question.
func (s *Session) Start(ctx context.Context) error {
	return s.begin(ctx, 0)
}

// Resume restores the last auto-saved snapshot and continues from it.
func (s *Session) Resume(ctx context.Context, snapshot *models.LedgerSnapshot) error {
	if snapshot == nil {
		return s.begin(ctx, 0)
	}
	if err := s.ledger.Restore(snapshot); err != nil {
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	return s.begin(ctx, snapshot.CurrentIndex)
}

func (s *Session) begin(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return fmt.Errorf("cannot start session in state %s", s.state)
	}
	s.state = StateActive
	s.runCtx = ctx
	s.mu.Unlock()

	if s.deadline.IsZero() {
		s.clock.Start(s.duration)
	} else {
		s.clock.StartWithDeadline(s.deadline, s.duration)
	}
	s.clock.OnExpire(s.expire)
	s.nav.Enter(index)

	s.logger.Info("Session started",
		"questions", s.ledger.Len(),
		"deadline", s.clock.Deadline(),
		"current_index", index)

	return s.saver.Start(ctx, s.interval, s, s.saveSnapshot)
}

// Tick polls the clock; the host calls it once per second. It returns the
// remaining time and triggers the auto-submit when the time runs out.
func (s *Session) Tick() time.Duration {
	return s.clock.Tick()
}

func (s *Session) Remaining() time.Duration {
	return s.clock.Remaining()
}

func (s *Session) Ledger() *Ledger {
	return s.ledger
}

func (s *Session) Navigator() *Navigator {
	return s.nav
}

func (s *Session) Questions() []models.PublicQuestion {
	return s.questions
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the score of a submitted session.
func (s *Session) Result() *models.ScoreResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Snapshot captures the ledger together with the navigation position.
// Time on the current question is attributed first so a crash loses at
// most one auto-save interval.
func (s *Session) Snapshot() *models.LedgerSnapshot {
	s.nav.Finalize()
	snapshot := s.ledger.Snapshot()
	snapshot.AttemptID = s.attemptID
	snapshot.CurrentIndex = s.nav.Current()
	snapshot.TakenAt = s.now().UTC()
	return snapshot
}

func (s *Session) saveSnapshot(ctx context.Context, snapshot *models.LedgerSnapshot) error {
	err := s.persistence.SaveAttemptSnapshot(ctx, s.attemptID, snapshot)
	if errors.Is(err, ErrAttemptTerminal) {
		s.logger.Warn("Attempt closed on the server, ending session")
		s.mu.Lock()
		active := s.state == StateActive
		if active {
			s.state = StateClosed
		}
		s.mu.Unlock()
		if active {
			s.clock.Stop()
		}
		// Stop waits for this save to return, so it cannot run inline.
		go s.saver.Stop()
	}
	return err
}

// Submit sends the ledger as a manual submission.
func (s *Session) Submit(ctx context.Context) (*models.ScoreResult, error) {
	return s.submit(ctx, models.SubmitManual)
}

func (s *Session) expire() {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}

	s.logger.Info("Time is up, auto-submitting")
	if _, err := s.submit(ctx, models.SubmitTimeout); err != nil {
		s.logger.Error("Auto-submit failed", "error", err)
	}
}

func (s *Session) submit(ctx context.Context, reason models.SubmitReason) (*models.ScoreResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil, ErrNotStarted
	case StateClosed:
		s.mu.Unlock()
		return nil, ErrSessionClosed
	case StateSubmitting:
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	}
	s.state = StateSubmitting
	s.mu.Unlock()

	// A retry after expiry keeps the timeout reason.
	if s.clock.Expired() {
		reason = models.SubmitTimeout
	}

	s.saver.Stop()

	payload, err := Assemble(s.Snapshot(), s.questions, s.clock.Elapsed(), reason)
	if err != nil {
		s.reopen(ctx)
		return nil, err
	}

	result, err := s.persistence.SubmitAttempt(ctx, s.attemptID, payload)
	if err != nil {
		if errors.Is(err, ErrAttemptTerminal) {
			s.close(nil)
			return nil, err
		}
		s.reopen(ctx)
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	s.close(result)
	s.logger.Info("Session submitted",
		"reason", reason,
		"score", result.TotalPoints,
		"percentage", result.Percentage)
	return result, nil
}

func (s *Session) close(result *models.ScoreResult) {
	s.clock.Stop()
	s.mu.Lock()
	s.state = StateClosed
	s.result = result
	s.mu.Unlock()
}

// reopen returns a session whose submit failed to the active state so the
// student can retry.
func (s *Session) reopen(ctx context.Context) {
	s.mu.Lock()
	s.state = StateActive
	s.mu.Unlock()

	if !s.clock.Expired() {
		if err := s.saver.Start(ctx, s.interval, s, s.saveSnapshot); err != nil && !errors.Is(err, ErrAutoSaveRunning) {
			s.logger.Warn("Failed to restart auto-save", "error", err)
		}
	}
}
