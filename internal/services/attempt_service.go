package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/analytics"
	"github.com/SAP-F-2025/attempt-service/internal/events"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"github.com/SAP-F-2025/attempt-service/internal/scoring"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
)

const overdueBatchSize = 100

type AttemptServiceConfig struct {
	// SubmitGrace is how long past the deadline a submission is still
	// accepted, covering network latency of a timer-driven submit.
	SubmitGrace time.Duration
	Now         func() time.Time
}

type attemptService struct {
	attempts  repositories.AttemptRepository
	catalog   CatalogService
	engine    *scoring.Engine
	analyzer  *analytics.Aggregator
	validator *validator.Validator
	publisher events.EventPublisher
	logger    *slog.Logger
	ops       *ServiceLogger

	grace time.Duration
	now   func() time.Time
}

func NewAttemptService(
	attempts repositories.AttemptRepository,
	catalog CatalogService,
	engine *scoring.Engine,
	analyzer *analytics.Aggregator,
	validator *validator.Validator,
	publisher events.EventPublisher,
	logger *slog.Logger,
	cfg AttemptServiceConfig,
) AttemptService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &attemptService{
		attempts:  attempts,
		catalog:   catalog,
		engine:    engine,
		analyzer:  analyzer,
		validator: validator,
		publisher: publisher,
		logger:    logger,
		ops:       NewServiceLogger(logger, "attempt"),
		grace:     cfg.SubmitGrace,
		now:       cfg.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest, studentID uint) (resp *AttemptResponse, err error) {
	done := s.ops.Track(ctx, "start_attempt", studentID, req.TestID)
	defer func() { done(err) }()

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err := s.catalog.GetTest(ctx, req.TestID)
	if err != nil {
		return nil, err
	}

	active, err := s.attempts.GetActiveAttempt(ctx, studentID, test.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}
	if active != nil {
		if !active.IsOverdue(s.now(), s.grace) {
			s.logger.Info("Resuming existing attempt", "attempt_id", active.ID, "student_id", studentID)
			return s.buildResponse(active, test, true)
		}
		if _, err := s.expire(ctx, active, test); err != nil {
			return nil, err
		}
	}

	count, err := s.attempts.GetAttemptCount(ctx, studentID, test.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}
	if test.AllowedAttempts > 0 && count >= test.AllowedAttempts {
		return nil, ErrAttemptLimitExceeded
	}

	now := s.now()
	attempt := &models.Attempt{
		TestID:        test.ID,
		StudentID:     studentID,
		AttemptNumber: count + 1,
		Status:        models.AttemptInProgress,
		StartTime:     now,
		Deadline:      now.Add(test.DurationTime()),
		MaxMarks:      test.ComputeTotalMarks(),
	}
	attempt.QuestionOrder = s.catalog.QuestionOrder(test, attemptSeed(test.ID, studentID, attempt.AttemptNumber))

	if err := s.attempts.Create(ctx, attempt); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// A concurrent start created this attempt number first.
			if active, getErr := s.attempts.GetActiveAttempt(ctx, studentID, test.ID); getErr == nil && active != nil {
				return s.buildResponse(active, test, true)
			}
			return nil, ErrAttemptCannotStart
		}
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"test_id", test.ID,
		"student_id", studentID,
		"attempt_number", attempt.AttemptNumber)

	s.publish(ctx, events.NewAttemptStartedEvent(events.AttemptStartedEvent{
		AttemptID:     attempt.ID,
		TestID:        test.ID,
		TestTitle:     test.Title,
		StudentID:     studentID,
		AttemptNumber: attempt.AttemptNumber,
		StartedAt:     attempt.StartTime,
		Deadline:      attempt.Deadline,
	}))

	return s.buildResponse(attempt, test, false)
}

func (s *attemptService) Get(ctx context.Context, attemptID, studentID uint) (*AttemptResponse, error) {
	attempt, test, err := s.loadCurrent(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(attempt, test, false)
}

func (s *attemptService) SaveSnapshot(ctx context.Context, attemptID, studentID uint, snapshot *models.LedgerSnapshot) (err error) {
	done := s.ops.Track(ctx, "save_snapshot", studentID, attemptID)
	defer func() { done(err) }()

	if err := s.validator.Validate(snapshot); err != nil {
		return err
	}

	attempt, err := s.getOwned(ctx, attemptID, studentID)
	if err != nil {
		return err
	}
	if attempt.Status.IsTerminal() {
		return ErrAttemptAlreadySubmitted
	}

	test, err := s.catalog.GetTest(ctx, attempt.TestID)
	if err != nil {
		return err
	}

	if attempt.IsOverdue(s.now(), s.grace) {
		if _, err := s.expire(ctx, attempt, test); err != nil {
			return err
		}
		return ErrAttemptTimeExpired
	}
	if err := validateSnapshot(snapshot, test); err != nil {
		return err
	}

	now := s.now()
	snapshot.AttemptID = attempt.ID
	if snapshot.TakenAt.IsZero() {
		snapshot.TakenAt = now
	}
	data, err := marshalJSON(snapshot)
	if err != nil {
		return err
	}

	if err := s.attempts.SaveAutoSave(ctx, attempt.ID, data, now); err != nil {
		return s.mapRepoError(err)
	}
	return nil
}

func (s *attemptService) Submit(ctx context.Context, attemptID, studentID uint, payload *models.SubmissionPayload) (resp *SubmitResponse, err error) {
	done := s.ops.Track(ctx, "submit_attempt", studentID, attemptID)
	defer func() { done(err) }()

	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}

	attempt, err := s.getOwned(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if attempt.Status.IsTerminal() {
		return nil, ErrAttemptAlreadySubmitted
	}

	test, err := s.catalog.GetTest(ctx, attempt.TestID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if attempt.IsOverdue(now, s.grace) {
		if _, err := s.expire(ctx, attempt, test); err != nil {
			return nil, err
		}
		return nil, ErrAttemptTimeExpired
	}

	// The server clock decides the reason; a client cannot claim a timeout
	// before the deadline.
	reason := models.SubmitManual
	if now.After(attempt.Deadline) {
		reason = models.SubmitTimeout
	}

	submission := *payload
	submission.Reason = reason
	result, err := s.finalize(ctx, attempt, test, &submission, now)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"reason", reason,
		"score", result.TotalPoints,
		"percentage", result.Percentage)

	if !test.ShowResults {
		result = result.Summary()
	}
	return &SubmitResponse{
		AttemptID: attempt.ID,
		Status:    attempt.Status,
		Result:    result,
	}, nil
}

func (s *attemptService) Abandon(ctx context.Context, attemptID, studentID uint) (err error) {
	done := s.ops.Track(ctx, "abandon_attempt", studentID, attemptID)
	defer func() { done(err) }()

	attempt, err := s.getOwned(ctx, attemptID, studentID)
	if err != nil {
		return err
	}
	if attempt.Status.IsTerminal() {
		return ErrAttemptAlreadySubmitted
	}

	now := s.now()
	attempt.Status = models.AttemptAbandoned
	attempt.TotalTimeSpent = s.timeSpent(attempt, now)
	if err := s.attempts.Finalize(ctx, attempt); err != nil {
		return s.mapRepoError(err)
	}

	s.publish(ctx, events.NewAttemptAbandonedEvent(events.AttemptAbandonedEvent{
		AttemptID:   attempt.ID,
		TestID:      attempt.TestID,
		StudentID:   attempt.StudentID,
		AbandonedAt: now,
	}))
	return nil
}

func (s *attemptService) GetTimeRemaining(ctx context.Context, attemptID, studentID uint) (*TimeRemainingResponse, error) {
	attempt, _, err := s.loadCurrent(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &TimeRemainingResponse{
		AttemptID:        attempt.ID,
		Status:           attempt.Status,
		Deadline:         attempt.Deadline,
		RemainingSeconds: int(attempt.Remaining(now) / time.Second),
		ServerTime:       now,
	}, nil
}

func (s *attemptService) GetResult(ctx context.Context, attemptID, studentID uint) (*ResultResponse, error) {
	attempt, test, err := s.loadCurrent(ctx, attemptID, studentID)
	if err != nil {
		return nil, err
	}
	if !attempt.Status.IsTerminal() || attempt.Status == models.AttemptAbandoned {
		return nil, ErrResultsNotAvailable
	}

	result, err := attempt.ScoreResult()
	if err != nil {
		return nil, fmt.Errorf("failed to decode attempt result: %w", err)
	}
	if result == nil {
		return nil, ErrResultsNotAvailable
	}

	resp := &ResultResponse{
		AttemptID:     attempt.ID,
		TestID:        test.ID,
		TestTitle:     test.Title,
		AttemptNumber: attempt.AttemptNumber,
		Status:        attempt.Status,
		SubmittedAt:   attempt.SubmittedAt,
		Result:        result,
	}
	if test.ShowResults {
		resp.Report = s.analyzer.Analyze(result)
	} else {
		resp.Result = result.Summary()
		resp.DetailsHidden = true
	}
	return resp, nil
}

func (s *attemptService) ListByTest(ctx context.Context, testID, studentID uint) ([]*models.Attempt, error) {
	test, err := s.catalog.GetTest(ctx, testID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attempts.GetByStudentAndTest(ctx, studentID, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	now := s.now()
	for i, attempt := range attempts {
		if attempt.IsOverdue(now, s.grace) {
			expired, err := s.expire(ctx, attempt, test)
			if err != nil {
				return nil, err
			}
			attempt = expired
		}
		attempts[i] = visibleAttempt(attempt, test)
	}
	return attempts, nil
}

// ExpireOverdue auto-submits every in-progress attempt past its deadline
// plus grace. Failures are logged and the sweep continues.
func (s *attemptService) ExpireOverdue(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.grace)
	overdue, err := s.attempts.GetOverdueAttempts(ctx, cutoff, overdueBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue attempts: %w", err)
	}

	tests := make(map[uint]*models.Test)
	expired := 0
	for _, attempt := range overdue {
		if ctx.Err() != nil {
			return expired, ctx.Err()
		}

		test, ok := tests[attempt.TestID]
		if !ok {
			test, err = s.catalog.GetTest(ctx, attempt.TestID)
			if err != nil {
				s.logger.Error("Failed to load test for overdue attempt",
					"attempt_id", attempt.ID,
					"test_id", attempt.TestID,
					"error", err)
				continue
			}
			tests[attempt.TestID] = test
		}

		if _, err := s.expire(ctx, attempt, test); err != nil {
			s.logger.Error("Failed to expire attempt", "attempt_id", attempt.ID, "error", err)
			continue
		}
		expired++
	}

	if expired > 0 {
		s.logger.Info("Expired overdue attempts", "count", expired)
	}
	return expired, nil
}
