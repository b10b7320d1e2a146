package scoring

import (
	"fmt"
	"slices"

	apperrors "github.com/SAP-F-2025/attempt-service/internal/errors"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/validator"
	"github.com/shopspring/decimal"
)

type Option func(*Engine)

// WithStrategy overrides the strategy used for a question type.
func WithStrategy(t models.QuestionType, s Strategy) Option {
	return func(e *Engine) { e.strategies[t] = s }
}

// WithGradeRanges replaces the letter-grade table, highest range first.
func WithGradeRanges(ranges []models.GradeRange) Option {
	return func(e *Engine) { e.ranges = slices.Clone(ranges) }
}

// Engine grades submissions against a test's answer key. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	strategies map[models.QuestionType]Strategy
	ranges     []models.GradeRange
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		strategies: map[models.QuestionType]Strategy{
			models.SingleChoice:   exactOptionStrategy{},
			models.TrueFalse:      exactOptionStrategy{},
			models.MultipleChoice: optionSetStrategy{},
			models.Numerical:      numericStrategy{},
			models.FillInBlank:    textMatchStrategy{},
		},
		ranges: models.DefaultGradeRanges,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Grade scores a submission. Questions of the test missing from the
// submission count as skipped. Answers for questions outside the test are
// integrity errors; malformed answers are validation errors. Nothing is
// scored unless the whole submission is valid.
func (e *Engine) Grade(submission *models.SubmissionPayload, test *models.Test) (*models.ScoreResult, error) {
	responses := make(map[uint]models.SubmittedAnswer, len(submission.Answers))
	for _, a := range submission.Answers {
		if _, ok := test.QuestionByID(a.QuestionID); !ok {
			return nil, apperrors.NewIntegrityError(a.QuestionID, apperrors.ErrUnknownQuestion)
		}
		if _, dup := responses[a.QuestionID]; dup {
			return nil, apperrors.NewIntegrityError(a.QuestionID, apperrors.ErrDuplicateAnswer)
		}
		responses[a.QuestionID] = a
	}

	ordered := slices.Clone(test.Questions)
	slices.SortStableFunc(ordered, func(a, b models.TestQuestion) int { return a.Order - b.Order })

	result := &models.ScoreResult{
		MaxPoints:    test.ComputeTotalMarks(),
		Answers:      make([]models.GradedAnswer, 0, len(ordered)),
		ByDifficulty: make(map[models.DifficultyLevel]models.Bucket),
		ByTopic:      make(map[string]models.Bucket),
		TimeSpent:    submission.ElapsedSeconds,
	}

	var errs validator.ValidationErrors
	var total float64
	for i := range ordered {
		q := &ordered[i].Question
		sub := responses[q.ID]
		response := sub.Response
		if response.Type == "" {
			response.Type = q.Type
		}
		if verr := validator.CheckAnswerShape(fmt.Sprintf("answers[%d].response", i), q.Type, len(q.Options), response); verr != nil {
			errs = append(errs, *verr)
			continue
		}

		graded, err := e.gradeQuestion(q, response, test.NegativeMarking)
		if err != nil {
			return nil, err
		}
		graded.TimeSpent = sub.TimeSpent
		total += graded.MarksObtained

		switch graded.Status {
		case models.AnswerCorrect:
			result.Breakdown.Correct++
		case models.AnswerIncorrect:
			result.Breakdown.Incorrect++
		default:
			result.Breakdown.Skipped++
		}
		addToBucket(result.ByDifficulty, q.Difficulty, graded.IsCorrect)
		addToBucket(result.ByTopic, topicOf(q), graded.IsCorrect)
		result.Answers = append(result.Answers, graded)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if total < 0 {
		total = 0
	}
	result.TotalPoints = roundMarks(total)
	exact := exactPercentage(result.TotalPoints, float64(result.MaxPoints))
	result.Percentage = exact.Round(1).InexactFloat64()
	result.IsPassed = exact.GreaterThanOrEqual(decimal.NewFromFloat(test.PassingScore))
	result.Grade = LetterGrade(exact.InexactFloat64(), e.ranges)

	finishBuckets(result.ByDifficulty)
	finishBuckets(result.ByTopic)
	return result, nil
}

func (e *Engine) gradeQuestion(q *models.Question, response models.AnswerValue, negative float64) (models.GradedAnswer, error) {
	graded := models.GradedAnswer{
		Answer: models.Answer{
			QuestionID: q.ID,
			Response:   response.Clone(),
			Status:     models.AnswerSkipped,
		},
		MaxMarks:    q.Marks,
		Difficulty:  q.Difficulty,
		Topic:       topicOf(q),
		Explanation: q.Explanation,
	}
	if response.IsEmpty() {
		return graded, nil
	}

	strategy, ok := e.strategies[q.Type]
	if !ok {
		return graded, fmt.Errorf("no grading strategy for question type %q", q.Type)
	}

	if strategy.Correct(q, response) {
		graded.Status = models.AnswerCorrect
		graded.IsCorrect = true
		graded.MarksObtained = float64(q.Marks)
	} else {
		graded.Status = models.AnswerIncorrect
		if negative > 0 {
			graded.MarksObtained = -negative * float64(q.Marks)
		}
	}
	return graded, nil
}

func topicOf(q *models.Question) string {
	if q.Topic == "" {
		return "general"
	}
	return q.Topic
}

func addToBucket[K comparable](buckets map[K]models.Bucket, key K, correct bool) {
	b := buckets[key]
	b.Total++
	if correct {
		b.Correct++
	}
	buckets[key] = b
}

func finishBuckets[K comparable](buckets map[K]models.Bucket) {
	for key, b := range buckets {
		b.Percentage = Percentage(float64(b.Correct), float64(b.Total))
		buckets[key] = b
	}
}
