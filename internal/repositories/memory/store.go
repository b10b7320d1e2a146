// Package memory holds process-local repositories used for development and
// tests. State is lost on restart.
package memory

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/repositories"
	"gorm.io/datatypes"
)

type TestStore struct {
	mu    sync.RWMutex
	tests map[uint]models.Test
}

func NewTestStore() *TestStore {
	return &TestStore{tests: map[uint]models.Test{}}
}

// PutTest stores a test, replacing any test with the same id.
func (m *TestStore) PutTest(test models.Test) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[test.ID] = test
}

func (m *TestStore) GetByIDWithQuestions(_ context.Context, id uint) (*models.Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	test, ok := m.tests[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	test.Questions = slices.Clone(test.Questions)
	sort.SliceStable(test.Questions, func(i, j int) bool {
		return test.Questions[i].Order < test.Questions[j].Order
	})
	return &test, nil
}

type AttemptStore struct {
	mu       sync.RWMutex
	nextID   uint
	attempts map[uint]models.Attempt
	now      func() time.Time
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{
		nextID:   1,
		attempts: map[uint]models.Attempt{},
		now:      time.Now,
	}
}

func (m *AttemptStore) Create(_ context.Context, attempt *models.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.TestID == attempt.TestID && a.StudentID == attempt.StudentID && a.AttemptNumber == attempt.AttemptNumber {
			return repositories.ErrDuplicate
		}
	}
	attempt.ID = m.nextID
	m.nextID++
	now := m.now()
	attempt.CreatedAt = now
	attempt.UpdatedAt = now
	m.attempts[attempt.ID] = cloneAttempt(*attempt)
	return nil
}

func (m *AttemptStore) GetByID(_ context.Context, id uint) (*models.Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := cloneAttempt(a)
	return &out, nil
}

func (m *AttemptStore) GetActiveAttempt(_ context.Context, studentID, testID uint) (*models.Attempt, error) {
	for _, a := range m.filter(func(a models.Attempt) bool {
		return a.StudentID == studentID && a.TestID == testID && a.Status == models.AttemptInProgress
	}) {
		return a, nil
	}
	return nil, nil
}

func (m *AttemptStore) GetAttemptCount(_ context.Context, studentID, testID uint) (int, error) {
	return len(m.filter(func(a models.Attempt) bool {
		return a.StudentID == studentID && a.TestID == testID
	})), nil
}

func (m *AttemptStore) GetByStudentAndTest(_ context.Context, studentID, testID uint) ([]*models.Attempt, error) {
	attempts := m.filter(func(a models.Attempt) bool {
		return a.StudentID == studentID && a.TestID == testID
	})
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].AttemptNumber < attempts[j].AttemptNumber })
	return attempts, nil
}

func (m *AttemptStore) GetOverdueAttempts(_ context.Context, cutoff time.Time, limit int) ([]*models.Attempt, error) {
	attempts := m.filter(func(a models.Attempt) bool {
		return a.Status == models.AttemptInProgress && a.Deadline.Before(cutoff)
	})
	sort.Slice(attempts, func(i, j int) bool { return attempts[i].Deadline.Before(attempts[j].Deadline) })
	if limit > 0 && len(attempts) > limit {
		attempts = attempts[:limit]
	}
	return attempts, nil
}

func (m *AttemptStore) SaveAutoSave(_ context.Context, id uint, data datatypes.JSON, savedAt time.Time) error {
	return m.update(id, func(a *models.Attempt) {
		a.AutoSaveData = slices.Clone(data)
		a.LastAutoSave = &savedAt
	})
}

func (m *AttemptStore) Finalize(_ context.Context, attempt *models.Attempt) error {
	src := cloneAttempt(*attempt)
	return m.update(attempt.ID, func(a *models.Attempt) {
		a.Status = src.Status
		a.SubmittedAt = src.SubmittedAt
		a.TotalTimeSpent = src.TotalTimeSpent
		a.Answers = src.Answers
		a.MarksObtained = src.MarksObtained
		a.MaxMarks = src.MaxMarks
		a.Percentage = src.Percentage
		a.Grade = src.Grade
		a.IsPassed = src.IsPassed
		a.Result = src.Result
	})
}

// update applies fn under the write lock when the attempt is in progress.
func (m *AttemptStore) update(id uint, fn func(a *models.Attempt)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if a.Status != models.AttemptInProgress {
		return repositories.ErrNotInProgress
	}
	fn(&a)
	a.UpdatedAt = m.now()
	m.attempts[id] = a
	return nil
}

func (m *AttemptStore) filter(keep func(a models.Attempt) bool) []*models.Attempt {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Attempt
	for _, a := range m.attempts {
		if keep(a) {
			c := cloneAttempt(a)
			out = append(out, &c)
		}
	}
	return out
}

func cloneAttempt(a models.Attempt) models.Attempt {
	a.Answers = slices.Clone(a.Answers)
	a.Result = slices.Clone(a.Result)
	a.AutoSaveData = slices.Clone(a.AutoSaveData)
	a.QuestionOrder = slices.Clone(a.QuestionOrder)
	if a.SubmittedAt != nil {
		t := *a.SubmittedAt
		a.SubmittedAt = &t
	}
	if a.LastAutoSave != nil {
		t := *a.LastAutoSave
		a.LastAutoSave = &t
	}
	return a
}

var (
	_ repositories.TestRepository    = (*TestStore)(nil)
	_ repositories.AttemptRepository = (*AttemptStore)(nil)
)
