package scoring

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/attempt-service/internal/models"
)

// Strategy decides whether a non-empty, well-formed response is correct.
type Strategy interface {
	Correct(q *models.Question, response models.AnswerValue) bool
}

type StrategyFunc func(q *models.Question, response models.AnswerValue) bool

func (f StrategyFunc) Correct(q *models.Question, response models.AnswerValue) bool {
	return f(q, response)
}

// exactOptionStrategy grades single-choice and true-false questions.
type exactOptionStrategy struct{}

func (exactOptionStrategy) Correct(q *models.Question, response models.AnswerValue) bool {
	key := q.CorrectIndices()
	return len(key) == 1 && len(response.Selected) == 1 && response.Selected[0] == key[0]
}

// optionSetStrategy grades multiple-choice questions by exact set equality.
// Supersets and subsets of the key are incorrect.
type optionSetStrategy struct{}

func (optionSetStrategy) Correct(q *models.Question, response models.AnswerValue) bool {
	return equalSet(q.CorrectIndices(), response.Selected)
}

// textMatchStrategy grades fill-in-blank questions against accepted strings.
type textMatchStrategy struct{}

func (textMatchStrategy) Correct(q *models.Question, response models.AnswerValue) bool {
	given := normalize(response.Text)
	for _, accepted := range q.AcceptedAnswers() {
		if normalize(accepted) == given {
			return true
		}
	}
	return false
}

// numericStrategy matches text first, then compares parsed values so that
// "3.0" and "3" are the same answer.
type numericStrategy struct{}

func (numericStrategy) Correct(q *models.Question, response models.AnswerValue) bool {
	if (textMatchStrategy{}).Correct(q, response) {
		return true
	}
	given, ok := parseNumber(response.Text)
	if !ok {
		return false
	}
	for _, accepted := range q.AcceptedAnswers() {
		if want, ok := parseNumber(accepted); ok && math.Abs(given-want) <= 1e-9*math.Max(1, math.Abs(want)) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func equalSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
