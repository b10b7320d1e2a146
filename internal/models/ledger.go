package models

import "time"

type QuestionStatus string

const (
	QuestionFlagged    QuestionStatus = "flagged"
	QuestionAnswered   QuestionStatus = "answered"
	QuestionVisited    QuestionStatus = "visited"
	QuestionNotVisited QuestionStatus = "not-visited"
)

type QuestionState struct {
	QuestionID uint        `json:"question_id" validate:"required"`
	Answer     AnswerValue `json:"answer"`
	TimeTaken  int         `json:"time_taken" validate:"min=0"` // seconds
	Flagged    bool        `json:"flagged"`
	Visited    bool        `json:"visited"`
}

// Status derives the display status: flagged, then answered, then visited.
func (s QuestionState) Status() QuestionStatus {
	switch {
	case s.Flagged:
		return QuestionFlagged
	case !s.Answer.IsEmpty():
		return QuestionAnswered
	case s.Visited:
		return QuestionVisited
	default:
		return QuestionNotVisited
	}
}

// LedgerSnapshot is a full copy of a session ledger. The server stores the
// latest one as the attempt's auto-save data.
type LedgerSnapshot struct {
	AttemptID    uint            `json:"attempt_id"`
	CurrentIndex int             `json:"current_index" validate:"min=0"`
	Questions    []QuestionState `json:"questions" validate:"dive"`
	TakenAt      time.Time       `json:"taken_at"`
}

// Submission converts the snapshot into a payload with the given reason.
// Unanswered questions are kept with empty responses.
func (s *LedgerSnapshot) Submission(elapsedSeconds int, reason SubmitReason) SubmissionPayload {
	payload := SubmissionPayload{
		Answers:        make([]SubmittedAnswer, 0, len(s.Questions)),
		ElapsedSeconds: elapsedSeconds,
		Reason:         reason,
	}
	for _, q := range s.Questions {
		payload.Answers = append(payload.Answers, SubmittedAnswer{
			QuestionID: q.QuestionID,
			Response:   q.Answer.Clone(),
			TimeSpent:  q.TimeTaken,
		})
	}
	return payload
}

// StatusSummary counts questions per display status.
type StatusSummary struct {
	Total      int `json:"total"`
	Flagged    int `json:"flagged"`
	Answered   int `json:"answered"`
	Visited    int `json:"visited"`
	NotVisited int `json:"not_visited"`
}
