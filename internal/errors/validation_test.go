package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("test_field", "test message", "test_value")

	assert.Equal(t, "test_field", err.Field)
	assert.Equal(t, "test message", err.Message)
	assert.Equal(t, "test_value", err.Value)
	assert.Equal(t, "validation error on field 'test_field': test message", err.Error())

	withRule := NewValidationErrorWithRule("answers[0]", "too many", "answer_shape", []int{1, 2})
	assert.Equal(t, "answer_shape", withRule.Rule)
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	assert.Equal(t, "validation failed", errs.Error())
	assert.NoError(t, errs.Err())

	errs.Add("field1", "message1", "", nil)
	assert.Equal(t, "validation failed: field1 message1", errs.Error())

	errs.Add("field2", "message2", "", nil)
	assert.Equal(t, "validation failed: 2 field errors", errs.Error())

	var target ValidationErrors
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", errs.Err()), &target))
	assert.Len(t, target, 2)
}

func TestToValidationErrors(t *testing.T) {
	type request struct {
		TestID uint   `validate:"required"`
		Reason string `validate:"oneof=manual timeout"`
	}

	err := validator.New().Struct(request{Reason: "late"})
	require.Error(t, err)

	errs := ToValidationErrors(err)
	require.Len(t, errs, 2)
	assert.Equal(t, "required", errs[0].Rule)
	assert.Equal(t, "is required", errs[0].Message)
	assert.Equal(t, "must be one of: manual timeout", errs[1].Message)
}

func TestIntegrityError(t *testing.T) {
	err := fmt.Errorf("grading: %w", NewIntegrityError(7, ErrUnknownQuestion))

	assert.True(t, IsIntegrity(err))
	assert.ErrorIs(t, err, ErrUnknownQuestion)
	assert.Contains(t, err.Error(), "question 7")
	assert.False(t, IsIntegrity(errors.New("other")))
}
