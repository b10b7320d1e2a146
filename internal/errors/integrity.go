package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownQuestion = errors.New("question is not part of the test")
	ErrDuplicateAnswer = errors.New("question answered more than once")
)

// IntegrityError rejects a request whose data contradicts stored state.
// It is never partially applied.
type IntegrityError struct {
	QuestionID uint
	Err        error
}

func (ie *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error on question %d: %v", ie.QuestionID, ie.Err)
}

func (ie *IntegrityError) Unwrap() error {
	return ie.Err
}

func NewIntegrityError(questionID uint, err error) *IntegrityError {
	return &IntegrityError{QuestionID: questionID, Err: err}
}

func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
