package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.Attempt) error {
	return translate(a.db.WithContext(ctx).Create(attempt).Error, "create attempt")
}

func (a *AttemptPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).First(&attempt, id).Error; err != nil {
		return nil, translate(err, "get attempt")
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetActiveAttempt(ctx context.Context, studentID, testID uint) (*models.Attempt, error) {
	var attempt models.Attempt
	if err := a.db.WithContext(ctx).
		Where("student_id = ? AND test_id = ? AND status = ?", studentID, testID, models.AttemptInProgress).
		Order("attempt_number DESC").
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translate(err, "get active attempt")
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) GetAttemptCount(ctx context.Context, studentID, testID uint) (int, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Count(&count).Error; err != nil {
		return 0, translate(err, "count attempts")
	}
	return int(count), nil
}

func (a *AttemptPostgreSQL) GetByStudentAndTest(ctx context.Context, studentID, testID uint) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	if err := a.db.WithContext(ctx).
		Where("student_id = ? AND test_id = ?", studentID, testID).
		Order("attempt_number ASC").
		Find(&attempts).Error; err != nil {
		return nil, translate(err, "list attempts")
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) GetOverdueAttempts(ctx context.Context, cutoff time.Time, limit int) ([]*models.Attempt, error) {
	var attempts []*models.Attempt
	query := a.db.WithContext(ctx).
		Where("status = ? AND deadline < ?", models.AttemptInProgress, cutoff).
		Order("deadline ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&attempts).Error; err != nil {
		return nil, translate(err, "list overdue attempts")
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) SaveAutoSave(ctx context.Context, id uint, data datatypes.JSON, savedAt time.Time) error {
	result := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND status = ?", id, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"auto_save_data": data,
			"last_auto_save": savedAt,
		})
	if result.Error != nil {
		return translate(result.Error, "save auto-save data")
	}
	if result.RowsAffected == 0 {
		return a.missingOrTerminal(ctx, id)
	}
	return nil
}

func (a *AttemptPostgreSQL) Finalize(ctx context.Context, attempt *models.Attempt) error {
	result := a.db.WithContext(ctx).
		Model(&models.Attempt{}).
		Where("id = ? AND status = ?", attempt.ID, models.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":           attempt.Status,
			"submitted_at":     attempt.SubmittedAt,
			"total_time_spent": attempt.TotalTimeSpent,
			"answers":          attempt.Answers,
			"marks_obtained":   attempt.MarksObtained,
			"max_marks":        attempt.MaxMarks,
			"percentage":       attempt.Percentage,
			"grade":            attempt.Grade,
			"is_passed":        attempt.IsPassed,
			"result":           attempt.Result,
		})
	if result.Error != nil {
		return translate(result.Error, "finalize attempt")
	}
	if result.RowsAffected == 0 {
		return a.missingOrTerminal(ctx, attempt.ID)
	}
	return nil
}

// missingOrTerminal tells apart a conditional update that matched nothing
// because the row is gone from one that lost to a terminal transition.
func (a *AttemptPostgreSQL) missingOrTerminal(ctx context.Context, id uint) error {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.Attempt{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return translate(err, "check attempt")
	}
	if count == 0 {
		return repositories.ErrNotFound
	}
	return repositories.ErrNotInProgress
}
