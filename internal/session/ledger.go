package session

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
)

type ledgerEntry struct {
	qType       models.QuestionType
	optionCount int
	answer      models.AnswerValue
	timeTaken   time.Duration
	flagged     bool
	visited     bool
}

func (e *ledgerEntry) state(id uint) models.QuestionState {
	return models.QuestionState{
		QuestionID: id,
		Answer:     e.answer.Clone(),
		TimeTaken:  int(e.timeTaken.Round(time.Second) / time.Second),
		Flagged:    e.flagged,
		Visited:    e.visited,
	}
}

// Ledger records the live answers of one attempt. It is safe for
// concurrent use by the UI and the auto-saver.
type Ledger struct {
	mu      sync.RWMutex
	order   []uint
	entries map[uint]*ledgerEntry
}

func NewLedger(questions []models.PublicQuestion) *Ledger {
	l := &Ledger{
		order:   make([]uint, 0, len(questions)),
		entries: make(map[uint]*ledgerEntry, len(questions)),
	}
	for _, q := range questions {
		l.order = append(l.order, q.ID)
		l.entries[q.ID] = &ledgerEntry{
			qType:       q.Type,
			optionCount: q.OptionCount(),
			answer:      models.AnswerValue{Type: q.Type},
		}
	}
	return l
}

func (l *Ledger) Len() int {
	return len(l.order)
}

// QuestionIDs returns the question ids in presentation order.
func (l *Ledger) QuestionIDs() []uint {
	return slices.Clone(l.order)
}

func (l *Ledger) entry(id uint) (*ledgerEntry, error) {
	e, ok := l.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
	}
	return e, nil
}

// SetAnswer replaces the stored value after checking it fits the question.
func (l *Ledger) SetAnswer(id uint, value models.AnswerValue) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return err
	}
	if value.Type == "" {
		value.Type = e.qType
	}
	if verr := validator.CheckAnswerShape("answer", e.qType, e.optionCount, value); verr != nil {
		return validator.ValidationErrors{*verr}
	}
	e.answer = value.Clone()
	return nil
}

// SelectOption toggles index for multiple-choice questions and replaces the
// selection for single-choice and true-false questions.
func (l *Ledger) SelectOption(id uint, index int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return err
	}
	if !e.qType.IsChoice() {
		return validator.ValidationErrors{{Field: "answer", Message: "question does not take option selections", Rule: "answer_shape", Value: index}}
	}
	if index < 0 || index >= e.optionCount {
		return validator.ValidationErrors{{Field: "answer.selected", Message: fmt.Sprintf("option %d is out of range", index), Rule: "answer_shape", Value: index}}
	}

	if e.qType.IsExclusive() {
		e.answer = models.ChoiceAnswer(e.qType, index)
		return nil
	}

	selected := slices.Clone(e.answer.Selected)
	if i := slices.Index(selected, index); i >= 0 {
		selected = slices.Delete(selected, i, i+1)
	} else {
		selected = append(selected, index)
		slices.Sort(selected)
	}
	e.answer = models.ChoiceAnswer(e.qType, selected...)
	return nil
}

// SetText stores a free-text response for numerical and fill-in-blank questions.
func (l *Ledger) SetText(id uint, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return err
	}
	if e.qType.IsChoice() {
		return validator.ValidationErrors{{Field: "answer", Message: "question does not take text", Rule: "answer_shape", Value: text}}
	}
	e.answer = models.TextAnswer(e.qType, strings.TrimSpace(text))
	return nil
}

func (l *Ledger) ClearAnswer(id uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return err
	}
	e.answer = models.AnswerValue{Type: e.qType}
	return nil
}

// ToggleFlag flips the review flag and returns the new value.
func (l *Ledger) ToggleFlag(id uint) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return false, err
	}
	e.flagged = !e.flagged
	return e.flagged, nil
}

func (l *Ledger) MarkVisited(id uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return err
	}
	e.visited = true
	return nil
}

func (l *Ledger) AddTimeSpent(id uint, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	e, err := l.entry(id)
	if err != nil {
		return err
	}
	e.timeTaken += d
	return nil
}

func (l *Ledger) Answer(id uint) (models.AnswerValue, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, err := l.entry(id)
	if err != nil {
		return models.AnswerValue{}, err
	}
	return e.answer.Clone(), nil
}

func (l *Ledger) Status(id uint) (models.QuestionStatus, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, err := l.entry(id)
	if err != nil {
		return "", err
	}
	return e.state(id).Status(), nil
}

func (l *Ledger) Summary() models.StatusSummary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	summary := models.StatusSummary{Total: len(l.order)}
	for _, id := range l.order {
		switch l.entries[id].state(id).Status() {
		case models.QuestionFlagged:
			summary.Flagged++
		case models.QuestionAnswered:
			summary.Answered++
		case models.QuestionVisited:
			summary.Visited++
		default:
			summary.NotVisited++
		}
	}
	return summary
}

// Snapshot returns a deep copy of the ledger in presentation order.
func (l *Ledger) Snapshot() *models.LedgerSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := &models.LedgerSnapshot{
		Questions: make([]models.QuestionState, 0, len(l.order)),
		TakenAt:   time.Now().UTC(),
	}
	for _, id := range l.order {
		snapshot.Questions = append(snapshot.Questions, l.entries[id].state(id))
	}
	return snapshot
}

// Restore loads a previously saved snapshot. Questions missing from the
// snapshot keep their current state; unknown ones are rejected.
func (l *Ledger) Restore(snapshot *models.LedgerSnapshot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs validator.ValidationErrors
	for i, qs := range snapshot.Questions {
		e, err := l.entry(qs.QuestionID)
		if err != nil {
			return err
		}
		if verr := validator.CheckAnswerShape(fmt.Sprintf("questions[%d].answer", i), e.qType, e.optionCount, qs.Answer); verr != nil {
			errs = append(errs, *verr)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	for _, qs := range snapshot.Questions {
		e := l.entries[qs.QuestionID]
		e.answer = qs.Answer.Clone()
		if e.answer.Type == "" {
			e.answer.Type = e.qType
		}
		e.timeTaken = time.Duration(qs.TimeTaken) * time.Second
		e.flagged = qs.Flagged
		e.visited = qs.Visited
	}
	return nil
}
