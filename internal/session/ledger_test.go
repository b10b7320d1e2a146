package session

import (
	"math/rand"
	"testing"
	"time"

	apperrors "github.com/SAP-F-2025/attempt-service/internal/errors"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_SingleChoiceIsExclusive(t *testing.T) {
	ledger := NewLedger(sampleQuestions())
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		id := uint(1)
		if i%2 == 1 {
			id = 3
		}
		options := 4
		if id == 3 {
			options = 2
		}
		index := rng.Intn(options)
		require.NoError(t, ledger.SelectOption(id, index))

		answer, err := ledger.Answer(id)
		require.NoError(t, err)
		assert.Equal(t, []int{index}, answer.Selected)
	}
}

func TestLedger_MultipleChoiceToggles(t *testing.T) {
	ledger := NewLedger(sampleQuestions())

	require.NoError(t, ledger.SelectOption(2, 2))
	require.NoError(t, ledger.SelectOption(2, 0))
	require.NoError(t, ledger.SelectOption(2, 3))

	answer, _ := ledger.Answer(2)
	assert.Equal(t, []int{0, 2, 3}, answer.Selected)

	require.NoError(t, ledger.SelectOption(2, 2))
	answer, _ = ledger.Answer(2)
	assert.Equal(t, []int{0, 3}, answer.Selected)

	require.NoError(t, ledger.SelectOption(2, 0))
	require.NoError(t, ledger.SelectOption(2, 3))
	answer, _ = ledger.Answer(2)
	assert.True(t, answer.IsEmpty())
}

func TestLedger_SetAnswerRejectsMalformedShapes(t *testing.T) {
	ledger := NewLedger(sampleQuestions())

	err := ledger.SetAnswer(1, models.ChoiceAnswer(models.SingleChoice, 0, 1))
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "answer_shape", errs[0].Rule)

	assert.Error(t, ledger.SetAnswer(2, models.ChoiceAnswer(models.MultipleChoice, 9)))
	assert.Error(t, ledger.SetAnswer(4, models.ChoiceAnswer(models.SingleChoice, 0)))
	assert.Error(t, ledger.SelectOption(4, 0))
	assert.Error(t, ledger.SetText(1, "A"))
	assert.Error(t, ledger.SelectOption(1, 4))

	require.NoError(t, ledger.SetAnswer(2, models.AnswerValue{Selected: []int{1, 3}}))
	answer, _ := ledger.Answer(2)
	assert.Equal(t, models.MultipleChoice, answer.Type)
	assert.Equal(t, []int{1, 3}, answer.Selected)
}

func TestLedger_UnknownQuestion(t *testing.T) {
	ledger := NewLedger(sampleQuestions())

	assert.ErrorIs(t, ledger.SelectOption(99, 0), ErrUnknownQuestion)
	assert.ErrorIs(t, ledger.MarkVisited(99), ErrUnknownQuestion)
	_, err := ledger.ToggleFlag(99)
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestLedger_StatusPriority(t *testing.T) {
	ledger := NewLedger(sampleQuestions())

	status, _ := ledger.Status(1)
	assert.Equal(t, models.QuestionNotVisited, status)

	require.NoError(t, ledger.MarkVisited(1))
	status, _ = ledger.Status(1)
	assert.Equal(t, models.QuestionVisited, status)

	require.NoError(t, ledger.SelectOption(1, 2))
	status, _ = ledger.Status(1)
	assert.Equal(t, models.QuestionAnswered, status)

	flagged, err := ledger.ToggleFlag(1)
	require.NoError(t, err)
	assert.True(t, flagged)
	status, _ = ledger.Status(1)
	assert.Equal(t, models.QuestionFlagged, status, "flagged and answered shows as flagged")

	require.NoError(t, ledger.SetText(5, "   "))
	status, _ = ledger.Status(5)
	assert.Equal(t, models.QuestionNotVisited, status, "blank text is not an answer")

	summary := ledger.Summary()
	assert.Equal(t, models.StatusSummary{Total: 5, Flagged: 1, NotVisited: 4}, summary)
}

func TestLedger_ClearAnswer(t *testing.T) {
	ledger := NewLedger(sampleQuestions())

	require.NoError(t, ledger.MarkVisited(2))
	require.NoError(t, ledger.SelectOption(2, 1))
	require.NoError(t, ledger.SelectOption(2, 3))
	require.NoError(t, ledger.ClearAnswer(2))

	answer, err := ledger.Answer(2)
	require.NoError(t, err)
	assert.True(t, answer.IsEmpty())
	assert.Equal(t, models.MultipleChoice, answer.Type)

	status, _ := ledger.Status(2)
	assert.Equal(t, models.QuestionVisited, status)

	require.NoError(t, ledger.SetText(4, "4"))
	require.NoError(t, ledger.ClearAnswer(4))
	answer, _ = ledger.Answer(4)
	assert.Empty(t, answer.Text)

	assert.Error(t, ledger.ClearAnswer(99))
}

func TestLedger_SnapshotIsACopy(t *testing.T) {
	ledger := NewLedger(sampleQuestions())
	require.NoError(t, ledger.SelectOption(2, 1))
	require.NoError(t, ledger.AddTimeSpent(2, 1500*time.Millisecond))

	snapshot := ledger.Snapshot()
	require.Len(t, snapshot.Questions, 5)
	assert.Equal(t, uint(2), snapshot.Questions[1].QuestionID)
	assert.Equal(t, 2, snapshot.Questions[1].TimeTaken)

	snapshot.Questions[1].Answer.Selected[0] = 3
	require.NoError(t, ledger.SelectOption(2, 2))

	answer, _ := ledger.Answer(2)
	assert.Equal(t, []int{1, 2}, answer.Selected)
	assert.Equal(t, []int{3}, snapshot.Questions[1].Answer.Selected)
}

func TestLedger_Restore(t *testing.T) {
	ledger := NewLedger(sampleQuestions())

	err := ledger.Restore(&models.LedgerSnapshot{
		Questions: []models.QuestionState{
			{QuestionID: 2, Answer: models.ChoiceAnswer(models.MultipleChoice, 0, 2), TimeTaken: 12, Visited: true},
			{QuestionID: 5, Answer: models.TextAnswer(models.FillInBlank, "Paris"), Flagged: true},
		},
	})
	require.NoError(t, err)

	answer, _ := ledger.Answer(2)
	assert.Equal(t, []int{0, 2}, answer.Selected)
	status, _ := ledger.Status(5)
	assert.Equal(t, models.QuestionFlagged, status)
	assert.Equal(t, 12, ledger.Snapshot().Questions[1].TimeTaken)

	err = ledger.Restore(&models.LedgerSnapshot{
		Questions: []models.QuestionState{{QuestionID: 1, Answer: models.ChoiceAnswer(models.SingleChoice, 0, 1)}},
	})
	assert.Error(t, err)
	assert.ErrorIs(t, ledger.Restore(&models.LedgerSnapshot{Questions: []models.QuestionState{{QuestionID: 42}}}), ErrUnknownQuestion)
}
