package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/xuri/excelize/v2"
)

type ResultExporter struct {
	attempts AttemptService
}

func NewResultExporter(attempts AttemptService) *ResultExporter {
	return &ResultExporter{attempts: attempts}
}

// ExportResultToExcel renders an attempt's result as an xlsx workbook with a
// Summary sheet and, when details are visible, an Answers sheet.
func (e *ResultExporter) ExportResultToExcel(ctx context.Context, attemptID, studentID uint) ([]byte, string, error) {
	res, err := e.attempts.GetResult(ctx, attemptID, studentID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	result := res.Result
	rows := [][]interface{}{
		{"Test", res.TestTitle},
		{"Attempt", res.AttemptNumber},
		{"Status", string(res.Status)},
		{"Score", result.TotalPoints},
		{"Max Score", result.MaxPoints},
		{"Percentage", result.Percentage},
		{"Grade", result.Grade},
		{"Passed", result.IsPassed},
		{"Correct", result.Breakdown.Correct},
		{"Incorrect", result.Breakdown.Incorrect},
		{"Skipped", result.Breakdown.Skipped},
		{"Time Spent (s)", result.TimeSpent},
	}
	if res.SubmittedAt != nil {
		rows = append(rows, []interface{}{"Submitted At", res.SubmittedAt.UTC().Format("2006-01-02 15:04:05")})
	}
	for i, row := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, "", fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	if !res.DetailsHidden && len(result.Answers) > 0 {
		if err := writeAnswersSheet(f, result.Answers); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	filename := fmt.Sprintf("attempt-%d-result.xlsx", res.AttemptID)
	return buf.Bytes(), filename, nil
}

func writeAnswersSheet(f *excelize.File, answers []models.GradedAnswer) error {
	const sheet = "Answers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []interface{}{"Question ID", "Status", "Marks", "Max Marks", "Difficulty", "Topic", "Time Spent (s)"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write answer headers: %w", err)
	}

	for i, a := range answers {
		row := []interface{}{a.QuestionID, string(a.Status), a.MarksObtained, a.MaxMarks, string(a.Difficulty), a.Topic, a.TimeSpent}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write answer row: %w", err)
		}
	}
	return nil
}
