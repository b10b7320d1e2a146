package models

import "time"

// Test is read-only to this service; admin collaborators own its lifecycle.
type Test struct {
	ID                 uint    `json:"id" gorm:"primaryKey"`
	Title              string  `json:"title" gorm:"not null;size:200" validate:"required,max=200"`
	Duration           int     `json:"duration" gorm:"not null" validate:"required,min=1"` // minutes
	TotalMarks         int     `json:"total_marks"`
	PassingScore       float64 `json:"passing_score" gorm:"not null" validate:"min=0,max=100"` // percentage
	AllowedAttempts    int     `json:"allowed_attempts" gorm:"default:1" validate:"min=0"`     // 0 means unlimited
	RandomizeQuestions bool    `json:"randomize_questions" gorm:"default:false"`
	ShowResults        bool    `json:"show_results" gorm:"default:true"`
	NegativeMarking    float64 `json:"negative_marking" gorm:"default:0" validate:"min=0,max=1"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Questions []TestQuestion `json:"questions" gorm:"foreignKey:TestID" validate:"required,min=1,dive"`
}

func (Test) TableName() string {
	return "tests"
}

type TestQuestion struct {
	TestID     uint     `json:"test_id" gorm:"primaryKey"`
	QuestionID uint     `json:"question_id" gorm:"primaryKey"`
	Order      int      `json:"order" gorm:"not null"`
	Question   Question `json:"question" gorm:"foreignKey:QuestionID"`
}

func (TestQuestion) TableName() string {
	return "test_questions"
}

// DurationTime returns the configured duration as a time.Duration.
func (t *Test) DurationTime() time.Duration {
	return time.Duration(t.Duration) * time.Minute
}

// ComputeTotalMarks sums the marks of the included questions.
func (t *Test) ComputeTotalMarks() int {
	total := 0
	for _, tq := range t.Questions {
		total += tq.Question.Marks
	}
	return total
}

// QuestionByID returns the included question with the given id.
func (t *Test) QuestionByID(id uint) (*Question, bool) {
	for i := range t.Questions {
		if t.Questions[i].QuestionID == id {
			return &t.Questions[i].Question, true
		}
	}
	return nil, false
}

// PublicTest is what a student sees before submitting an attempt.
type PublicTest struct {
	ID         uint             `json:"id"`
	Title      string           `json:"title"`
	Duration   int              `json:"duration"`
	TotalMarks int              `json:"total_marks"`
	Questions  []PublicQuestion `json:"questions"`
}

// Public returns the sanitized view of the test with questions in the given
// order. Questions missing from order follow in their configured order.
func (t *Test) Public(order []uint) PublicTest {
	pub := PublicTest{
		ID:         t.ID,
		Title:      t.Title,
		Duration:   t.Duration,
		TotalMarks: t.ComputeTotalMarks(),
		Questions:  make([]PublicQuestion, 0, len(t.Questions)),
	}

	placed := make(map[uint]bool, len(t.Questions))
	for _, id := range order {
		if q, ok := t.QuestionByID(id); ok && !placed[id] {
			pub.Questions = append(pub.Questions, q.Public())
			placed[id] = true
		}
	}
	for i := range t.Questions {
		if !placed[t.Questions[i].QuestionID] {
			pub.Questions = append(pub.Questions, t.Questions[i].Question.Public())
		}
	}
	return pub
}

// QuestionIDs returns the ids of the included questions in configured order.
func (t *Test) QuestionIDs() []uint {
	ids := make([]uint, len(t.Questions))
	for i, tq := range t.Questions {
		ids[i] = tq.QuestionID
	}
	return ids
}
