package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator combines struct tag validation with domain rules.
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

func New() *Validator {
	structValidator := validator.New()

	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	if err := v.structValidator.Struct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Validate performs struct validation followed by the domain rules that
// apply to the value's type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		return err
	}

	switch value := s.(type) {
	case *models.Question:
		return v.questionValidator.ValidateQuestion(value)
	case *models.Test:
		return v.questionValidator.ValidateTest(value)
	case *models.LedgerSnapshot:
		return validateUniqueQuestions("questions", snapshotIDs(value))
	case *models.SubmissionPayload:
		return validateUniqueQuestions("answers", payloadIDs(value))
	}
	return nil
}

func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)

	// Report json field names in errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateQuestionType(fl validator.FieldLevel) bool {
	return models.QuestionType(fl.Field().String()).IsValid()
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	switch models.DifficultyLevel(fl.Field().String()) {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
		return true
	}
	return false
}

func snapshotIDs(s *models.LedgerSnapshot) []uint {
	ids := make([]uint, len(s.Questions))
	for i, q := range s.Questions {
		ids[i] = q.QuestionID
	}
	return ids
}

func payloadIDs(p *models.SubmissionPayload) []uint {
	ids := make([]uint, len(p.Answers))
	for i, a := range p.Answers {
		ids[i] = a.QuestionID
	}
	return ids
}

func validateUniqueQuestions(field string, ids []uint) error {
	var errs ValidationErrors
	seen := make(map[uint]bool, len(ids))
	for i, id := range ids {
		if seen[id] {
			errs.Add(indexed(field, i)+".question_id", "duplicates an earlier entry", "unique", id)
		}
		seen[id] = true
	}
	return errs.Err()
}
