package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	SingleChoice   QuestionType = "single-choice"
	MultipleChoice QuestionType = "multiple-choice"
	TrueFalse      QuestionType = "true-false"
	Numerical      QuestionType = "numerical"
	FillInBlank    QuestionType = "fill-in-blank"
)

// IsChoice reports whether answers to this type are option indices.
func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultipleChoice || t == TrueFalse
}

// IsExclusive reports whether at most one option may be selected.
func (t QuestionType) IsExclusive() bool {
	return t == SingleChoice || t == TrueFalse
}

func (t QuestionType) IsValid() bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse, Numerical, FillInBlank:
		return true
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
)

// Option is a selectable choice, or an accepted answer string for
// numerical and fill-in-blank questions.
type Option struct {
	Text      string  `json:"text" validate:"required"`
	IsCorrect bool    `json:"is_correct"`
	ImageURL  *string `json:"image_url,omitempty" validate:"omitempty,url"`
}

type Question struct {
	ID         uint                        `json:"id" gorm:"primaryKey"`
	Text       string                      `json:"text" gorm:"type:text;not null" validate:"required"`
	Type       QuestionType                `json:"type" gorm:"not null;size:32;index" validate:"required,question_type"`
	Options    datatypes.JSONSlice[Option] `json:"options" gorm:"type:jsonb" validate:"required,min=1,dive"`
	Marks      int                         `json:"marks" gorm:"not null;default:1" validate:"required,min=1"`
	Difficulty DifficultyLevel             `json:"difficulty" gorm:"size:16;index" validate:"required,difficulty_level"`

	// Classification
	Subject     string `json:"subject" gorm:"size:100;index"`
	ClassNumber int    `json:"class_number"`
	Chapter     string `json:"chapter" gorm:"size:200"`
	Topic       string `json:"topic" gorm:"size:200;index"`

	Explanation   *string `json:"explanation,omitempty" gorm:"type:text"`
	Hint          *string `json:"hint,omitempty" gorm:"type:text"`
	EstimatedTime int     `json:"estimated_time"` // seconds

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectIndices returns the indices of options flagged correct, in order.
func (q *Question) CorrectIndices() []int {
	var indices []int
	for i, opt := range q.Options {
		if opt.IsCorrect {
			indices = append(indices, i)
		}
	}
	return indices
}

// AcceptedAnswers returns the accepted answer strings of a text question.
func (q *Question) AcceptedAnswers() []string {
	accepted := make([]string, 0, len(q.Options))
	for _, opt := range q.Options {
		if text := strings.TrimSpace(opt.Text); text != "" {
			accepted = append(accepted, text)
		}
	}
	return accepted
}

// PublicQuestion is the client-facing view of a question. It never carries
// correctness data.
type PublicQuestion struct {
	ID            uint            `json:"id"`
	Text          string          `json:"text"`
	Type          QuestionType    `json:"type"`
	Options       []PublicOption  `json:"options,omitempty"`
	Marks         int             `json:"marks"`
	Difficulty    DifficultyLevel `json:"difficulty"`
	Topic         string          `json:"topic,omitempty"`
	Hint          *string         `json:"hint,omitempty"`
	EstimatedTime int             `json:"estimated_time"`
}

type PublicOption struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

// OptionCount is the number of selectable options, zero for text questions.
func (p PublicQuestion) OptionCount() int {
	return len(p.Options)
}

func (q *Question) Public() PublicQuestion {
	pub := PublicQuestion{
		ID:            q.ID,
		Text:          q.Text,
		Type:          q.Type,
		Marks:         q.Marks,
		Difficulty:    q.Difficulty,
		Topic:         q.Topic,
		Hint:          q.Hint,
		EstimatedTime: q.EstimatedTime,
	}
	if q.Type.IsChoice() {
		pub.Options = make([]PublicOption, len(q.Options))
		for i, opt := range q.Options {
			pub.Options[i] = PublicOption{Text: opt.Text, ImageURL: opt.ImageURL}
		}
	}
	return pub
}
