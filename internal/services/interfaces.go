package services

import (
	"context"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

// ===== SERVICE INTERFACES =====

type CatalogService interface {
	// GetTest returns the full test including the answer key.
	GetTest(ctx context.Context, testID uint) (*models.Test, error)
	// GetPublicTest returns the sanitized test in configured order.
	GetPublicTest(ctx context.Context, testID uint) (*models.PublicTest, error)
	// QuestionOrder returns the presentation order for one attempt.
	QuestionOrder(test *models.Test, seed int64) []uint
}

type AttemptService interface {
	Start(ctx context.Context, req *StartAttemptRequest, studentID uint) (*AttemptResponse, error)
	Get(ctx context.Context, attemptID, studentID uint) (*AttemptResponse, error)
	SaveSnapshot(ctx context.Context, attemptID, studentID uint, snapshot *models.LedgerSnapshot) error
	Submit(ctx context.Context, attemptID, studentID uint, payload *models.SubmissionPayload) (*SubmitResponse, error)
	Abandon(ctx context.Context, attemptID, studentID uint) error
	GetTimeRemaining(ctx context.Context, attemptID, studentID uint) (*TimeRemainingResponse, error)
	GetResult(ctx context.Context, attemptID, studentID uint) (*ResultResponse, error)
	ListByTest(ctx context.Context, testID, studentID uint) ([]*models.Attempt, error)
	ExpireOverdue(ctx context.Context) (int, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type StartAttemptRequest struct {
	TestID uint `json:"test_id" validate:"required"`
}

type AttemptResponse struct {
	Attempt       *models.Attempt        `json:"attempt"`
	Test          *models.PublicTest     `json:"test,omitempty"`
	Snapshot      *models.LedgerSnapshot `json:"snapshot,omitempty"`
	TimeRemaining int                    `json:"time_remaining"` // seconds
	Resumed       bool                   `json:"resumed"`
}

type SubmitResponse struct {
	AttemptID uint                 `json:"attempt_id"`
	Status    models.AttemptStatus `json:"status"`
	Result    *models.ScoreResult  `json:"result"`
}

type TimeRemainingResponse struct {
	AttemptID        uint                 `json:"attempt_id"`
	Status           models.AttemptStatus `json:"status"`
	Deadline         time.Time            `json:"deadline"`
	RemainingSeconds int                  `json:"remaining_seconds"`
	ServerTime       time.Time            `json:"server_time"`
}

type ResultResponse struct {
	AttemptID     uint                      `json:"attempt_id"`
	TestID        uint                      `json:"test_id"`
	TestTitle     string                    `json:"test_title"`
	AttemptNumber int                       `json:"attempt_number"`
	Status        models.AttemptStatus      `json:"status"`
	SubmittedAt   *time.Time                `json:"submitted_at"`
	Result        *models.ScoreResult       `json:"result"`
	Report        *models.PerformanceReport `json:"report,omitempty"`
	DetailsHidden bool                      `json:"details_hidden"`
}
