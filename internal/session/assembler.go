package session

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
)

// Assemble packages a ledger snapshot into a submission. Every question is
// included in presentation order; unanswered ones carry empty responses.
// Malformed answers are rejected with validation errors.
func Assemble(snapshot *models.LedgerSnapshot, questions []models.PublicQuestion, elapsed time.Duration, reason models.SubmitReason) (*models.SubmissionPayload, error) {
	states := make(map[uint]models.QuestionState, len(snapshot.Questions))
	var errs validator.ValidationErrors

	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	for i, qs := range snapshot.Questions {
		if !known[qs.QuestionID] {
			errs.Add(fmt.Sprintf("questions[%d].question_id", i), "is not part of the test", "unknown_question", qs.QuestionID)
			continue
		}
		states[qs.QuestionID] = qs
	}

	payload := &models.SubmissionPayload{
		Answers:        make([]models.SubmittedAnswer, 0, len(questions)),
		ElapsedSeconds: int(elapsed.Round(time.Second) / time.Second),
		Reason:         reason,
	}
	for i, q := range questions {
		state := states[q.ID]
		response := state.Answer.Clone()
		if response.Type == "" {
			response.Type = q.Type
		}
		if verr := validator.CheckAnswerShape(fmt.Sprintf("answers[%d].response", i), q.Type, q.OptionCount(), response); verr != nil {
			errs = append(errs, *verr)
			continue
		}
		if response.IsEmpty() {
			response = models.AnswerValue{Type: q.Type}
		}
		payload.Answers = append(payload.Answers, models.SubmittedAnswer{
			QuestionID: q.ID,
			Response:   response,
			TimeSpent:  state.TimeTaken,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return payload, nil
}
