package models

type QuestionTiming struct {
	QuestionID uint `json:"question_id"`
	TimeSpent  int  `json:"time_spent"`
}

type TopicInsight struct {
	Topic      string  `json:"topic"`
	Percentage float64 `json:"percentage"`
	Correct    int     `json:"correct"`
	Total      int     `json:"total"`
}

type DifficultyInsight struct {
	Difficulty DifficultyLevel `json:"difficulty"`
	Percentage float64         `json:"percentage"`
	Correct    int             `json:"correct"`
	Total      int             `json:"total"`
	Message    string          `json:"message"`
}

// PerformanceReport is derived from a ScoreResult for the results view.
type PerformanceReport struct {
	Accuracy               float64             `json:"accuracy"` // percentage of attempted questions answered correctly
	AverageTimePerQuestion float64             `json:"average_time_per_question"`
	FastestQuestion        *QuestionTiming     `json:"fastest_question,omitempty"`
	SlowestQuestion        *QuestionTiming     `json:"slowest_question,omitempty"`
	Strengths              []TopicInsight      `json:"strengths"`
	ImprovementAreas       []TopicInsight      `json:"improvement_areas"`
	Difficulty             []DifficultyInsight `json:"difficulty"`
	Feedback               string              `json:"feedback"`
}
