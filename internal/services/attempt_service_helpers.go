package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/SAP-F-2025/attempt-service/internal/errors"
	"github.com/SAP-F-2025/attempt-service/internal/events"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
	"gorm.io/datatypes"
)

// getOwned loads an attempt and checks it belongs to the student.
func (s *attemptService) getOwned(ctx context.Context, attemptID, studentID uint) (*models.Attempt, error) {
	attempt, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	if attempt.StudentID != studentID {
		return nil, NewPermissionError(studentID, attemptID, "attempt", "access", "not owned by student")
	}
	return attempt, nil
}

// loadCurrent loads an owned attempt and its test, expiring the attempt
// first when it is overdue.
func (s *attemptService) loadCurrent(ctx context.Context, attemptID, studentID uint) (*models.Attempt, *models.Test, error) {
	attempt, err := s.getOwned(ctx, attemptID, studentID)
	if err != nil {
		return nil, nil, err
	}
	test, err := s.catalog.GetTest(ctx, attempt.TestID)
	if err != nil {
		return nil, nil, err
	}
	if attempt.IsOverdue(s.now(), s.grace) {
		if attempt, err = s.expire(ctx, attempt, test); err != nil {
			return nil, nil, err
		}
	}
	return attempt, test, nil
}

func (s *attemptService) buildResponse(attempt *models.Attempt, test *models.Test, resumed bool) (*AttemptResponse, error) {
	resp := &AttemptResponse{
		Attempt:       visibleAttempt(attempt, test),
		TimeRemaining: int(attempt.Remaining(s.now()) / time.Second),
		Resumed:       resumed,
	}
	if attempt.Status != models.AttemptInProgress {
		return resp, nil
	}

	pub := test.Public(attempt.QuestionOrder)
	resp.Test = &pub

	snapshot, err := attempt.Snapshot()
	if err != nil {
		// A corrupt auto-save must not lock the student out.
		s.logger.Warn("Discarding unreadable auto-save data", "attempt_id", attempt.ID, "error", err)
		snapshot = nil
	}
	resp.Snapshot = snapshot
	return resp, nil
}

// visibleAttempt returns the attempt as the student may see it. When the
// test hides results the per-question answers are dropped and only the
// summary fields remain.
func visibleAttempt(attempt *models.Attempt, test *models.Test) *models.Attempt {
	if test.ShowResults || len(attempt.Answers) == 0 {
		return attempt
	}
	hidden := *attempt
	hidden.Answers = nil
	return &hidden
}

// expire auto-submits an attempt from its last auto-saved ledger. When
// another caller finalized it first, the stored attempt is returned.
func (s *attemptService) expire(ctx context.Context, attempt *models.Attempt, test *models.Test) (*models.Attempt, error) {
	now := s.now()
	submission := s.expirySubmission(attempt, test, now)

	result, err := s.finalize(ctx, attempt, test, submission, now)
	if err != nil && (apperrors.IsIntegrity(err) || IsValidation(err)) {
		// The saved ledger no longer matches the test; score it as blank.
		s.logger.Warn("Auto-save data rejected during expiry, grading empty submission",
			"attempt_id", attempt.ID,
			"error", err)
		blank := models.SubmissionPayload{ElapsedSeconds: submission.ElapsedSeconds, Reason: models.SubmitTimeout}
		result, err = s.finalize(ctx, attempt, test, &blank, now)
	}
	if err != nil {
		if errors.Is(err, ErrAttemptAlreadySubmitted) {
			return s.getOwned(ctx, attempt.ID, attempt.StudentID)
		}
		return nil, err
	}

	s.logger.Info("Attempt expired",
		"attempt_id", attempt.ID,
		"deadline", attempt.Deadline,
		"score", result.TotalPoints)

	s.publish(ctx, events.NewAttemptExpiredEvent(events.AttemptExpiredEvent{
		AttemptID: attempt.ID,
		TestID:    attempt.TestID,
		StudentID: attempt.StudentID,
		Deadline:  attempt.Deadline,
		ExpiredAt: now,
	}))
	return attempt, nil
}

func (s *attemptService) expirySubmission(attempt *models.Attempt, test *models.Test, now time.Time) *models.SubmissionPayload {
	elapsed := s.timeSpent(attempt, now)
	snapshot, err := attempt.Snapshot()
	if err != nil || snapshot == nil {
		if err != nil {
			s.logger.Warn("Unreadable auto-save data, grading empty submission", "attempt_id", attempt.ID, "error", err)
		}
		return &models.SubmissionPayload{ElapsedSeconds: elapsed, Reason: models.SubmitTimeout}
	}
	submission := snapshot.Submission(elapsed, models.SubmitTimeout)
	return &submission
}

// finalize grades the submission and performs the single terminal
// transition. attempt is updated in place on success.
func (s *attemptService) finalize(ctx context.Context, attempt *models.Attempt, test *models.Test, submission *models.SubmissionPayload, now time.Time) (*models.ScoreResult, error) {
	result, err := s.engine.Grade(submission, test)
	if err != nil {
		return nil, err
	}

	final := *attempt
	final.Status = submission.Reason.Status()
	final.SubmittedAt = &now
	final.TotalTimeSpent = s.timeSpent(attempt, now)
	result.TimeSpent = final.TotalTimeSpent

	final.Answers = result.StoredAnswers()
	final.MarksObtained = result.TotalPoints
	final.MaxMarks = result.MaxPoints
	final.Percentage = result.Percentage
	final.Grade = result.Grade
	final.IsPassed = result.IsPassed
	if final.Result, err = marshalJSON(result); err != nil {
		return nil, err
	}

	if err := s.attempts.Finalize(ctx, &final); err != nil {
		return nil, s.mapRepoError(err)
	}
	*attempt = final

	s.publish(ctx, events.NewAttemptSubmittedEvent(events.AttemptSubmittedEvent{
		AttemptID:   attempt.ID,
		TestID:      attempt.TestID,
		StudentID:   attempt.StudentID,
		Reason:      string(submission.Reason),
		SubmittedAt: now,
		TimeSpent:   attempt.TotalTimeSpent,
	}))
	s.publish(ctx, events.NewAttemptGradedEvent(events.AttemptGradedEvent{
		AttemptID:  attempt.ID,
		TestID:     attempt.TestID,
		StudentID:  attempt.StudentID,
		Score:      result.TotalPoints,
		MaxScore:   float64(result.MaxPoints),
		Percentage: result.Percentage,
		Grade:      result.Grade,
		Passed:     result.IsPassed,
	}, now))

	return result, nil
}

// timeSpent is the wall-clock time since start, capped at the attempt's
// allotted duration.
func (s *attemptService) timeSpent(attempt *models.Attempt, now time.Time) int {
	end := now
	if end.After(attempt.Deadline) {
		end = attempt.Deadline
	}
	spent := int(end.Sub(attempt.StartTime) / time.Second)
	if spent < 0 {
		return 0
	}
	return spent
}

// publish never fails the caller; attempt state is already committed.
func (s *attemptService) publish(ctx context.Context, event *events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish attempt event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err)
	}
}

func (s *attemptService) mapRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrNotInProgress):
		return ErrAttemptAlreadySubmitted
	case errors.Is(err, repositories.ErrNotFound):
		return ErrAttemptNotFound
	default:
		return fmt.Errorf("failed to update attempt: %w", err)
	}
}

// validateSnapshot checks every ledger entry against the attempt's test.
func validateSnapshot(snapshot *models.LedgerSnapshot, test *models.Test) error {
	var errs ValidationErrors
	if n := len(snapshot.Questions); n > 0 && snapshot.CurrentIndex >= n {
		errs.Add("current_index", fmt.Sprintf("must be less than %d", n), "max", snapshot.CurrentIndex)
	}
	for i, state := range snapshot.Questions {
		q, ok := test.QuestionByID(state.QuestionID)
		if !ok {
			return apperrors.NewIntegrityError(state.QuestionID, apperrors.ErrUnknownQuestion)
		}
		answer := state.Answer
		if answer.Type == "" {
			answer.Type = q.Type
		}
		if verr := validator.CheckAnswerShape(fmt.Sprintf("questions[%d].answer", i), q.Type, len(q.Options), answer); verr != nil {
			errs = append(errs, *verr)
		}
	}
	return errs.Err()
}

func marshalJSON(v interface{}) (datatypes.JSON, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return datatypes.JSON(data), nil
}
