package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the lifecycle events emitted for test attempts
type EventType string

const (
	EventAttemptStarted   EventType = "attempt.started"
	EventAttemptSubmitted EventType = "attempt.submitted"
	EventAttemptGraded    EventType = "attempt.graded"
	EventAttemptExpired   EventType = "attempt.expired"
	EventAttemptAbandoned EventType = "attempt.abandoned"
)

const (
	eventSource  = "attempt-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every attempt event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Attempt event payloads

type AttemptStartedEvent struct {
	AttemptID     uint      `json:"attempt_id"`
	TestID        uint      `json:"test_id"`
	TestTitle     string    `json:"test_title"`
	StudentID     uint      `json:"student_id"`
	AttemptNumber int       `json:"attempt_number"`
	StartedAt     time.Time `json:"started_at"`
	Deadline      time.Time `json:"deadline"`
}

type AttemptSubmittedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	TestID      uint      `json:"test_id"`
	StudentID   uint      `json:"student_id"`
	Reason      string    `json:"reason"`
	SubmittedAt time.Time `json:"submitted_at"`
	TimeSpent   int       `json:"time_spent"` // seconds
}

type AttemptGradedEvent struct {
	AttemptID  uint    `json:"attempt_id"`
	TestID     uint    `json:"test_id"`
	StudentID  uint    `json:"student_id"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"max_score"`
	Percentage float64 `json:"percentage"`
	Grade      string  `json:"grade"`
	Passed     bool    `json:"passed"`
}

type AttemptExpiredEvent struct {
	AttemptID uint      `json:"attempt_id"`
	TestID    uint      `json:"test_id"`
	StudentID uint      `json:"student_id"`
	Deadline  time.Time `json:"deadline"`
	ExpiredAt time.Time `json:"expired_at"`
}

type AttemptAbandonedEvent struct {
	AttemptID   uint      `json:"attempt_id"`
	TestID      uint      `json:"test_id"`
	StudentID   uint      `json:"student_id"`
	AbandonedAt time.Time `json:"abandoned_at"`
}

// Event factory functions

func newEvent(eventType EventType, at time.Time, data interface{}) *Event {
	return &Event{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: at,
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

func NewAttemptStartedEvent(payload AttemptStartedEvent) *Event {
	return newEvent(EventAttemptStarted, payload.StartedAt, payload)
}

func NewAttemptSubmittedEvent(payload AttemptSubmittedEvent) *Event {
	return newEvent(EventAttemptSubmitted, payload.SubmittedAt, payload)
}

func NewAttemptGradedEvent(payload AttemptGradedEvent, at time.Time) *Event {
	return newEvent(EventAttemptGraded, at, payload)
}

func NewAttemptExpiredEvent(payload AttemptExpiredEvent) *Event {
	return newEvent(EventAttemptExpired, payload.ExpiredAt, payload)
}

func NewAttemptAbandonedEvent(payload AttemptAbandonedEvent) *Event {
	return newEvent(EventAttemptAbandoned, payload.AbandonedAt, payload)
}

// GenerateEventID returns a random event identifier
func GenerateEventID() string {
	return uuid.NewString()
}
