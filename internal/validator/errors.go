package validator

import (
	"fmt"

	"github.com/SAP-F-2025/attempt-service/internal/errors"
)

type ValidationError = errors.ValidationError
type ValidationErrors = errors.ValidationErrors

func ToValidationErrors(err error) ValidationErrors {
	return errors.ToValidationErrors(err)
}

func indexed(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}
