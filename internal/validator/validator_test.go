package validator

import (
	"testing"

	apperrors "github.com/SAP-F-2025/attempt-service/internal/errors"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func choiceQuestion(id uint, qType models.QuestionType, correct ...int) models.Question {
	q := models.Question{
		ID:         id,
		Text:       "question",
		Type:       qType,
		Marks:      2,
		Difficulty: models.DifficultyEasy,
	}
	n := 4
	if qType == models.TrueFalse {
		n = 2
	}
	for i := 0; i < n; i++ {
		q.Options = append(q.Options, models.Option{Text: "option", IsCorrect: contains(correct, i)})
	}
	return q
}

func contains(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func TestValidateQuestion(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		q       models.Question
		wantErr bool
	}{
		{"single choice with one key", choiceQuestion(1, models.SingleChoice, 2), false},
		{"single choice with two keys", choiceQuestion(1, models.SingleChoice, 0, 2), true},
		{"single choice without key", choiceQuestion(1, models.SingleChoice), true},
		{"true false", choiceQuestion(1, models.TrueFalse, 0), false},
		{"multiple choice with two keys", choiceQuestion(1, models.MultipleChoice, 0, 2), false},
		{"multiple choice without key", choiceQuestion(1, models.MultipleChoice), true},
		{
			"numerical with accepted answers",
			models.Question{ID: 1, Text: "2+2", Type: models.Numerical, Marks: 1, Difficulty: models.DifficultyEasy,
				Options: []models.Option{{Text: "4"}, {Text: "four"}}},
			false,
		},
		{
			"fill in blank with blank answer",
			models.Question{ID: 1, Text: "capital", Type: models.FillInBlank, Marks: 1, Difficulty: models.DifficultyEasy,
				Options: []models.Option{{Text: "  "}}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.q)
			if tt.wantErr {
				var errs apperrors.ValidationErrors
				require.ErrorAs(t, err, &errs)
				assert.NotEmpty(t, errs)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateQuestion_StructTags(t *testing.T) {
	v := New()

	q := choiceQuestion(1, models.SingleChoice, 0)
	q.Type = "essay"
	q.Difficulty = "trivial"

	err := v.Validate(&q)
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)

	rules := make([]string, 0, len(errs))
	for _, e := range errs {
		rules = append(rules, e.Rule)
	}
	assert.Contains(t, rules, "question_type")
	assert.Contains(t, rules, "difficulty_level")
}

func TestValidateTest(t *testing.T) {
	v := New()

	test := &models.Test{
		Title:        "Quiz",
		Duration:     10,
		PassingScore: 50,
		Questions: []models.TestQuestion{
			{QuestionID: 1, Order: 1, Question: choiceQuestion(1, models.SingleChoice, 0)},
			{QuestionID: 2, Order: 2, Question: choiceQuestion(2, models.SingleChoice, 1)},
		},
	}
	assert.NoError(t, v.Validate(test))

	test.TotalMarks = 5
	assert.Error(t, v.Validate(test))

	test.TotalMarks = 0
	test.Questions = append(test.Questions, test.Questions[0])
	assert.Error(t, v.Validate(test))
}

func TestValidatePayload(t *testing.T) {
	v := New()

	payload := &models.SubmissionPayload{
		Reason: models.SubmitManual,
		Answers: []models.SubmittedAnswer{
			{QuestionID: 1, Response: models.ChoiceAnswer(models.SingleChoice, 0)},
			{QuestionID: 1},
		},
	}
	err := v.Validate(payload)
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "answers[1].question_id", errs[0].Field)

	payload.Answers = payload.Answers[:1]
	assert.NoError(t, v.Validate(payload))

	payload.Reason = "late"
	assert.Error(t, v.Validate(payload))
}

func TestCheckAnswerShape(t *testing.T) {
	tests := []struct {
		name    string
		qType   models.QuestionType
		value   models.AnswerValue
		wantErr bool
	}{
		{"empty value", models.SingleChoice, models.AnswerValue{}, false},
		{"single selection", models.SingleChoice, models.ChoiceAnswer(models.SingleChoice, 3), false},
		{"two selections on single choice", models.SingleChoice, models.ChoiceAnswer(models.SingleChoice, 0, 1), true},
		{"two selections on true false", models.TrueFalse, models.ChoiceAnswer(models.TrueFalse, 0, 1), true},
		{"set on multiple choice", models.MultipleChoice, models.ChoiceAnswer(models.MultipleChoice, 0, 2, 3), false},
		{"index out of range", models.MultipleChoice, models.ChoiceAnswer(models.MultipleChoice, 4), true},
		{"negative index", models.SingleChoice, models.ChoiceAnswer(models.SingleChoice, -1), true},
		{"repeated index", models.MultipleChoice, models.ChoiceAnswer(models.MultipleChoice, 1, 1), true},
		{"type mismatch", models.SingleChoice, models.TextAnswer(models.FillInBlank, "x"), true},
		{"text answer", models.Numerical, models.TextAnswer(models.Numerical, "42"), false},
		{"selection on text question", models.Numerical, models.AnswerValue{Type: models.Numerical, Selected: []int{0}, Text: "1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verr := CheckAnswerShape("answer", tt.qType, 4, tt.value)
			if tt.wantErr {
				require.NotNil(t, verr)
				assert.Equal(t, "answer_shape", verr.Rule)
			} else {
				assert.Nil(t, verr)
			}
		})
	}
}
