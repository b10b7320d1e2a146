package scoring

import (
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/shopspring/decimal"
)

// LetterGrade returns the grade of the first range whose minimum the
// percentage reaches. ranges must be ordered from highest to lowest.
func LetterGrade(percentage float64, ranges []models.GradeRange) string {
	for _, r := range ranges {
		if percentage >= r.MinScore {
			return r.Grade
		}
	}
	if len(ranges) == 0 {
		return ""
	}
	return ranges[len(ranges)-1].Grade
}

// Percentage returns part/whole*100 rounded to one decimal place.
func Percentage(part, whole float64) float64 {
	return exactPercentage(part, whole).Round(1).InexactFloat64()
}

// exactPercentage is part/whole*100 before any rounding. Pass/fail and
// letter grades are decided on this value so a reported 50.0 that was
// really 49.975 still fails a 50% threshold.
func exactPercentage(part, whole float64) decimal.Decimal {
	if whole <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(part).
		Div(decimal.NewFromFloat(whole)).
		Mul(decimal.NewFromInt(100))
}

func roundMarks(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
