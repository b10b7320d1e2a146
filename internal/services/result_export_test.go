package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestResultExporter_ExportResultToExcel(t *testing.T) {
	f := newFixture(t)
	resp := f.start(t)
	ctx := context.Background()

	f.advance(30 * time.Second)
	_, err := f.svc.Submit(ctx, resp.Attempt.ID, studentID, scenarioAPayload(models.SubmitManual))
	require.NoError(t, err)

	data, filename, err := NewResultExporter(f.svc).ExportResultToExcel(ctx, resp.Attempt.ID, studentID)
	require.NoError(t, err)
	assert.Equal(t, "attempt-1-result.xlsx", filename)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Summary", "Answers"}, book.GetSheetList())

	title, err := book.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Algebra quiz", title)

	grade, err := book.GetCellValue("Summary", "B7")
	require.NoError(t, err)
	assert.Equal(t, "F", grade)

	rows, err := book.GetRows("Answers")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "Question ID", rows[0][0])
	assert.Equal(t, "correct", rows[1][1])
	assert.Equal(t, "skipped", rows[3][1])
}

func TestResultExporter_HiddenDetailsHaveNoAnswersSheet(t *testing.T) {
	f := newFixture(t, func(test *models.Test) { test.ShowResults = false })
	resp := f.start(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, resp.Attempt.ID, studentID, scenarioAPayload(models.SubmitManual))
	require.NoError(t, err)

	data, _, err := NewResultExporter(f.svc).ExportResultToExcel(ctx, resp.Attempt.ID, studentID)
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"Summary"}, book.GetSheetList())
}

func TestResultExporter_InProgressHasNoResult(t *testing.T) {
	f := newFixture(t)
	resp := f.start(t)

	_, _, err := NewResultExporter(f.svc).ExportResultToExcel(context.Background(), resp.Attempt.ID, studentID)
	assert.ErrorIs(t, err, ErrResultsNotAvailable)
}
