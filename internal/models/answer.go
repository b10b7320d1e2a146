package models

import (
	"slices"
	"strings"
)

// AnswerValue is a response tagged by the question type it answers.
// Choice types use Selected, text types use Text.
type AnswerValue struct {
	Type     QuestionType `json:"type"`
	Selected []int        `json:"selected,omitempty"`
	Text     string       `json:"text,omitempty"`
}

func ChoiceAnswer(t QuestionType, selected ...int) AnswerValue {
	return AnswerValue{Type: t, Selected: selected}
}

func TextAnswer(t QuestionType, text string) AnswerValue {
	return AnswerValue{Type: t, Text: text}
}

// IsEmpty reports whether the value carries no response.
func (v AnswerValue) IsEmpty() bool {
	if v.Type.IsChoice() {
		return len(v.Selected) == 0
	}
	return strings.TrimSpace(v.Text) == ""
}

// Clone returns a copy that shares no memory with v.
func (v AnswerValue) Clone() AnswerValue {
	out := v
	if v.Selected != nil {
		out.Selected = slices.Clone(v.Selected)
	}
	return out
}

type AnswerStatus string

const (
	AnswerCorrect   AnswerStatus = "correct"
	AnswerIncorrect AnswerStatus = "incorrect"
	AnswerSkipped   AnswerStatus = "skipped"
)

// Answer is a graded response stored on the attempt.
type Answer struct {
	QuestionID    uint         `json:"question_id"`
	Response      AnswerValue  `json:"response"`
	Status        AnswerStatus `json:"status"`
	IsCorrect     bool         `json:"is_correct"`
	MarksObtained float64      `json:"marks_obtained"`
	TimeSpent     int          `json:"time_spent"` // seconds
}

type SubmitReason string

const (
	SubmitManual  SubmitReason = "manual"
	SubmitTimeout SubmitReason = "timeout"
)

// Status returns the terminal status a submission with this reason produces.
func (r SubmitReason) Status() AttemptStatus {
	if r == SubmitTimeout {
		return AttemptAutoSubmitted
	}
	return AttemptCompleted
}

type SubmittedAnswer struct {
	QuestionID uint        `json:"question_id" validate:"required"`
	Response   AnswerValue `json:"response"`
	TimeSpent  int         `json:"time_spent" validate:"min=0"`
}

// SubmissionPayload carries every question of the test, unanswered ones
// with empty responses.
type SubmissionPayload struct {
	Answers        []SubmittedAnswer `json:"answers" validate:"dive"`
	ElapsedSeconds int               `json:"elapsed_seconds" validate:"min=0"`
	Reason         SubmitReason      `json:"reason" validate:"required,oneof=manual timeout"`
}
