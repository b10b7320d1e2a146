package session

import (
	"sync"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func choiceQuestion(id uint, qType models.QuestionType, options int) models.PublicQuestion {
	q := models.PublicQuestion{ID: id, Text: "question", Type: qType, Marks: 1, Difficulty: models.DifficultyEasy}
	for i := 0; i < options; i++ {
		q.Options = append(q.Options, models.PublicOption{Text: "option"})
	}
	return q
}

// sampleQuestions returns one question of each type: ids 1..5.
func sampleQuestions() []models.PublicQuestion {
	return []models.PublicQuestion{
		choiceQuestion(1, models.SingleChoice, 4),
		choiceQuestion(2, models.MultipleChoice, 4),
		choiceQuestion(3, models.TrueFalse, 2),
		{ID: 4, Text: "2+2", Type: models.Numerical, Marks: 1, Difficulty: models.DifficultyEasy},
		{ID: 5, Text: "capital", Type: models.FillInBlank, Marks: 1, Difficulty: models.DifficultyMedium},
	}
}
