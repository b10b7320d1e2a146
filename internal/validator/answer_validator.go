package validator

import (
	"fmt"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

// CheckAnswerShape verifies that a value fits a question of the given type
// with optionCount selectable options. Empty values always fit.
func CheckAnswerShape(field string, qType models.QuestionType, optionCount int, value models.AnswerValue) *ValidationError {
	if value.IsEmpty() && (value.Type == "" || value.Type == qType) {
		return nil
	}
	if value.Type != qType {
		return newShapeError(field+".type", fmt.Sprintf("expected %s answer, got %q", qType, value.Type), value.Type)
	}

	if !qType.IsChoice() {
		if len(value.Selected) > 0 {
			return newShapeError(field+".selected", "text questions do not take option selections", value.Selected)
		}
		return nil
	}

	if value.Text != "" {
		return newShapeError(field+".text", "choice questions do not take text", value.Text)
	}
	if qType.IsExclusive() && len(value.Selected) > 1 {
		return newShapeError(field+".selected", "only one option may be selected", value.Selected)
	}
	seen := make(map[int]bool, len(value.Selected))
	for _, idx := range value.Selected {
		if idx < 0 || idx >= optionCount {
			return newShapeError(field+".selected", fmt.Sprintf("option %d is out of range", idx), value.Selected)
		}
		if seen[idx] {
			return newShapeError(field+".selected", fmt.Sprintf("option %d selected twice", idx), value.Selected)
		}
		seen[idx] = true
	}
	return nil
}

func newShapeError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Rule: "answer_shape", Value: value}
}
