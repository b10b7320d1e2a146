package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"gorm.io/datatypes"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrNotInProgress = errors.New("attempt is not in progress")
)

// TestRepository reads test definitions owned by the authoring side.
type TestRepository interface {
	GetByIDWithQuestions(ctx context.Context, id uint) (*models.Test, error)
}

// AttemptRepository persists attempts. Every mutation of an attempt is
// conditional on it still being in progress, so a terminal attempt is never
// overwritten.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id uint) (*models.Attempt, error)

	// GetActiveAttempt returns nil, nil when the student has no attempt in
	// progress for the test.
	GetActiveAttempt(ctx context.Context, studentID, testID uint) (*models.Attempt, error)
	GetAttemptCount(ctx context.Context, studentID, testID uint) (int, error)
	GetByStudentAndTest(ctx context.Context, studentID, testID uint) ([]*models.Attempt, error)

	// GetOverdueAttempts lists in-progress attempts whose deadline is before
	// cutoff, oldest deadline first.
	GetOverdueAttempts(ctx context.Context, cutoff time.Time, limit int) ([]*models.Attempt, error)

	// SaveAutoSave stores a ledger snapshot. ErrNotInProgress when the
	// attempt already reached a terminal status.
	SaveAutoSave(ctx context.Context, id uint, data datatypes.JSON, savedAt time.Time) error

	// Finalize writes the terminal status and result fields of attempt.
	// Exactly one caller wins; the others get ErrNotInProgress.
	Finalize(ctx context.Context, attempt *models.Attempt) error
}
