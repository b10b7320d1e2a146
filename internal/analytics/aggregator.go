package analytics

import (
	"fmt"
	"sort"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/SAP-F-2025/attempt-service/internal/scoring"
	"github.com/shopspring/decimal"
)

const (
	DefaultStrengthThreshold    = 80.0
	DefaultImprovementThreshold = 50.0
)

// Thresholds classify topics: at or above Strength is a strength, below
// Improvement is an improvement area.
type Thresholds struct {
	Strength    float64
	Improvement float64
}

type Aggregator struct {
	thresholds Thresholds
}

func NewAggregator(thresholds Thresholds) *Aggregator {
	if thresholds.Strength == 0 {
		thresholds.Strength = DefaultStrengthThreshold
	}
	if thresholds.Improvement == 0 {
		thresholds.Improvement = DefaultImprovementThreshold
	}
	return &Aggregator{thresholds: thresholds}
}

// Analyze derives a performance report from a graded result. Skipped
// questions do not count toward accuracy.
func (a *Aggregator) Analyze(result *models.ScoreResult) *models.PerformanceReport {
	report := &models.PerformanceReport{
		Accuracy:         scoring.Percentage(float64(result.Breakdown.Correct), float64(result.Breakdown.Attempted())),
		Strengths:        []models.TopicInsight{},
		ImprovementAreas: []models.TopicInsight{},
		Difficulty:       []models.DifficultyInsight{},
		Feedback:         feedbackFor(result.Percentage),
	}

	a.analyzeTime(result, report)
	a.analyzeTopics(result, report)
	analyzeDifficulty(result, report)
	return report
}

func (a *Aggregator) analyzeTime(result *models.ScoreResult, report *models.PerformanceReport) {
	if len(result.Answers) == 0 {
		return
	}

	total := 0
	for _, ans := range result.Answers {
		total += ans.TimeSpent
		if ans.Status == models.AnswerSkipped || ans.TimeSpent <= 0 {
			continue
		}
		if report.FastestQuestion == nil || ans.TimeSpent < report.FastestQuestion.TimeSpent {
			report.FastestQuestion = &models.QuestionTiming{QuestionID: ans.QuestionID, TimeSpent: ans.TimeSpent}
		}
		if report.SlowestQuestion == nil || ans.TimeSpent > report.SlowestQuestion.TimeSpent {
			report.SlowestQuestion = &models.QuestionTiming{QuestionID: ans.QuestionID, TimeSpent: ans.TimeSpent}
		}
	}
	report.AverageTimePerQuestion = decimal.NewFromInt(int64(total)).
		Div(decimal.NewFromInt(int64(len(result.Answers)))).
		Round(1).
		InexactFloat64()
}

func (a *Aggregator) analyzeTopics(result *models.ScoreResult, report *models.PerformanceReport) {
	topics := make([]string, 0, len(result.ByTopic))
	for topic := range result.ByTopic {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		b := result.ByTopic[topic]
		insight := models.TopicInsight{Topic: topic, Percentage: b.Percentage, Correct: b.Correct, Total: b.Total}
		switch {
		case b.Percentage >= a.thresholds.Strength:
			report.Strengths = append(report.Strengths, insight)
		case b.Percentage < a.thresholds.Improvement:
			report.ImprovementAreas = append(report.ImprovementAreas, insight)
		}
	}
}

var difficultyOrder = []models.DifficultyLevel{models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard}

func analyzeDifficulty(result *models.ScoreResult, report *models.PerformanceReport) {
	for _, level := range difficultyOrder {
		b, ok := result.ByDifficulty[level]
		if !ok {
			continue
		}
		report.Difficulty = append(report.Difficulty, models.DifficultyInsight{
			Difficulty: level,
			Percentage: b.Percentage,
			Correct:    b.Correct,
			Total:      b.Total,
			Message:    difficultyMessage(level, b.Percentage),
		})
	}
}

func difficultyMessage(level models.DifficultyLevel, percentage float64) string {
	switch {
	case percentage >= 80:
		return fmt.Sprintf("Strong command of %s questions", level)
	case percentage >= 50:
		return fmt.Sprintf("Reasonable handling of %s questions", level)
	default:
		return fmt.Sprintf("Practice more %s questions", level)
	}
}

func feedbackFor(percentage float64) string {
	switch {
	case percentage >= 90:
		return "Outstanding performance. Keep it up!"
	case percentage >= 75:
		return "Great work. Review the few questions you missed."
	case percentage >= 50:
		return "Good effort. Focus on your improvement areas to raise your score."
	default:
		return "Keep practicing. Revisit the fundamentals of the topics below."
	}
}
