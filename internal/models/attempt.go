package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress    AttemptStatus = "in-progress"
	AttemptCompleted     AttemptStatus = "completed"
	AttemptAutoSubmitted AttemptStatus = "auto-submitted"
	AttemptAbandoned     AttemptStatus = "abandoned"
)

// IsTerminal reports whether no further mutation is permitted.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptCompleted || s == AttemptAutoSubmitted || s == AttemptAbandoned
}

type Attempt struct {
	ID            uint          `json:"id" gorm:"primaryKey"`
	TestID        uint          `json:"test_id" gorm:"not null;uniqueIndex:idx_attempt_number"`
	StudentID     uint          `json:"student_id" gorm:"not null;uniqueIndex:idx_attempt_number;index"`
	AttemptNumber int           `json:"attempt_number" gorm:"not null;uniqueIndex:idx_attempt_number"`
	Status        AttemptStatus `json:"status" gorm:"size:20;not null;default:'in-progress';index"`

	StartTime      time.Time  `json:"start_time" gorm:"not null"`
	Deadline       time.Time  `json:"deadline" gorm:"not null;index"`
	SubmittedAt    *time.Time `json:"submitted_at"`
	TotalTimeSpent int        `json:"total_time_spent"` // seconds

	// Scoring, written once by the terminal transition
	Answers       datatypes.JSONSlice[Answer] `json:"answers,omitempty" gorm:"type:jsonb"`
	MarksObtained float64                     `json:"marks_obtained"`
	MaxMarks      int                         `json:"max_marks"`
	Percentage    float64                     `json:"percentage"`
	Grade         string                      `json:"grade,omitempty" gorm:"size:4"`
	IsPassed      bool                        `json:"is_passed"`
	Result        datatypes.JSON              `json:"-" gorm:"type:jsonb"`

	// Auto-save
	AutoSaveData datatypes.JSON `json:"auto_save_data,omitempty" gorm:"type:jsonb"`
	LastAutoSave *time.Time     `json:"last_auto_save"`

	QuestionOrder datatypes.JSONSlice[uint] `json:"question_order" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// Score is the total of marks obtained.
func (a *Attempt) Score() float64 {
	return a.MarksObtained
}

// IsOverdue reports whether an in-progress attempt ran past its deadline
// plus the grace period.
func (a *Attempt) IsOverdue(now time.Time, grace time.Duration) bool {
	return a.Status == AttemptInProgress && now.After(a.Deadline.Add(grace))
}

// Remaining returns the time left before the deadline, never negative.
func (a *Attempt) Remaining(now time.Time) time.Duration {
	if a.Status != AttemptInProgress {
		return 0
	}
	remaining := a.Deadline.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Snapshot decodes the last auto-saved ledger, nil when none was saved.
func (a *Attempt) Snapshot() (*LedgerSnapshot, error) {
	if len(a.AutoSaveData) == 0 {
		return nil, nil
	}
	var snapshot LedgerSnapshot
	if err := json.Unmarshal(a.AutoSaveData, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// ScoreResult decodes the stored grading result, nil for ungraded attempts.
func (a *Attempt) ScoreResult() (*ScoreResult, error) {
	if len(a.Result) == 0 {
		return nil, nil
	}
	var result ScoreResult
	if err := json.Unmarshal(a.Result, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
