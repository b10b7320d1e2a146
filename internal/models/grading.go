package models

type GradeRange struct {
	MinScore float64 `json:"min_score"`
	Grade    string  `json:"grade"`
	Label    string  `json:"label"`
}

// DefaultGradeRanges maps percentages to letter grades, highest first.
var DefaultGradeRanges = []GradeRange{
	{MinScore: 90, Grade: "A+", Label: "Outstanding"},
	{MinScore: 80, Grade: "A", Label: "Excellent"},
	{MinScore: 70, Grade: "B+", Label: "Very good"},
	{MinScore: 60, Grade: "B", Label: "Good"},
	{MinScore: 50, Grade: "C", Label: "Average"},
	{MinScore: 40, Grade: "D", Label: "Below average"},
	{MinScore: 0, Grade: "F", Label: "Fail"},
}

type Breakdown struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Skipped   int `json:"skipped"`
}

// Attempted is the number of answered questions.
func (b Breakdown) Attempted() int {
	return b.Correct + b.Incorrect
}

type Bucket struct {
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

type GradedAnswer struct {
	Answer
	MaxMarks    int             `json:"max_marks"`
	Difficulty  DifficultyLevel `json:"difficulty"`
	Topic       string          `json:"topic"`
	Explanation *string         `json:"explanation,omitempty"`
}

// ScoreResult is the output of grading one submission.
type ScoreResult struct {
	TotalPoints  float64                    `json:"total_points"`
	MaxPoints    int                        `json:"max_points"`
	Percentage   float64                    `json:"percentage"`
	Grade        string                     `json:"grade"`
	IsPassed     bool                       `json:"is_passed"`
	Breakdown    Breakdown                  `json:"breakdown"`
	Answers      []GradedAnswer             `json:"answers,omitempty"`
	ByDifficulty map[DifficultyLevel]Bucket `json:"by_difficulty,omitempty"`
	ByTopic      map[string]Bucket          `json:"by_topic,omitempty"`
	TimeSpent    int                        `json:"time_spent"`
}

// StoredAnswers returns the graded answers without catalog metadata.
func (r *ScoreResult) StoredAnswers() []Answer {
	answers := make([]Answer, len(r.Answers))
	for i, ga := range r.Answers {
		answers[i] = ga.Answer
	}
	return answers
}

// Summary drops per-question details, used when a test hides results.
func (r *ScoreResult) Summary() *ScoreResult {
	summary := *r
	summary.Answers = nil
	summary.ByDifficulty = nil
	summary.ByTopic = nil
	return &summary
}
