package validator

import (
	"strings"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

// QuestionValidator checks answer-key invariants of catalog questions.
type QuestionValidator struct{}

func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion enforces the option rules of each question type.
func (v *QuestionValidator) ValidateQuestion(q *models.Question) error {
	var errs ValidationErrors
	v.validateQuestion("", q, &errs)
	return errs.Err()
}

// ValidateTest checks every included question and the test's mark totals.
func (v *QuestionValidator) ValidateTest(t *models.Test) error {
	var errs ValidationErrors
	seen := make(map[uint]bool, len(t.Questions))
	for i := range t.Questions {
		tq := &t.Questions[i]
		field := indexed("questions", i)
		if seen[tq.QuestionID] {
			errs.Add(field+".question_id", "is included more than once", "unique", tq.QuestionID)
		}
		seen[tq.QuestionID] = true
		v.validateQuestion(field+".question.", &tq.Question, &errs)
	}
	if t.TotalMarks != 0 && t.TotalMarks != t.ComputeTotalMarks() {
		errs.Add("total_marks", "must equal the sum of question marks", "total_marks", t.TotalMarks)
	}
	return errs.Err()
}

func (v *QuestionValidator) validateQuestion(prefix string, q *models.Question, errs *ValidationErrors) {
	if q.Marks <= 0 {
		errs.Add(prefix+"marks", "must be positive", "min", q.Marks)
	}

	correct := len(q.CorrectIndices())
	switch q.Type {
	case models.SingleChoice:
		if correct != 1 {
			errs.Add(prefix+"options", "must have exactly one correct option", "question_type", correct)
		}
	case models.TrueFalse:
		if len(q.Options) != 2 {
			errs.Add(prefix+"options", "must have exactly two options", "question_type", len(q.Options))
		}
		if correct != 1 {
			errs.Add(prefix+"options", "must have exactly one correct option", "question_type", correct)
		}
	case models.MultipleChoice:
		if correct < 1 {
			errs.Add(prefix+"options", "must have at least one correct option", "question_type", correct)
		}
	case models.Numerical, models.FillInBlank:
		for i, opt := range q.Options {
			if strings.TrimSpace(opt.Text) == "" {
				errs.Add(indexed(prefix+"options", i), "accepted answer cannot be blank", "required", opt.Text)
			}
		}
		if len(q.AcceptedAnswers()) == 0 {
			errs.Add(prefix+"options", "must list at least one accepted answer", "required", nil)
		}
	default:
		errs.Add(prefix+"type", "must be a valid question type", "question_type", q.Type)
	}
}
