package session

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestNavigator_Boundaries(t *testing.T) {
	nav := NewNavigator(NewLedger(sampleQuestions()), newFakeClock().Now)
	nav.Enter(0)

	assert.False(t, nav.Previous())
	assert.Equal(t, 0, nav.Current())

	assert.True(t, nav.GoTo(4))
	assert.False(t, nav.Next())
	assert.Equal(t, 4, nav.Current())

	assert.False(t, nav.GoTo(-1))
	assert.False(t, nav.GoTo(5))
	assert.False(t, nav.GoTo(4))
	assert.Equal(t, 4, nav.Current())
	assert.Equal(t, uint(5), nav.CurrentQuestion())
}

func TestNavigator_MarksVisitedOnEntry(t *testing.T) {
	ledger := NewLedger(sampleQuestions())
	nav := NewNavigator(ledger, newFakeClock().Now)
	nav.Enter(0)
	nav.Next()
	nav.GoTo(3)

	for id, want := range map[uint]models.QuestionStatus{
		1: models.QuestionVisited,
		2: models.QuestionVisited,
		3: models.QuestionNotVisited,
		4: models.QuestionVisited,
	} {
		status, _ := ledger.Status(id)
		assert.Equal(t, want, status, "question %d", id)
	}
}

func TestNavigator_AttributesTimeOnLeave(t *testing.T) {
	fc := newFakeClock()
	ledger := NewLedger(sampleQuestions())
	nav := NewNavigator(ledger, fc.Now)
	nav.Enter(0)

	fc.Advance(5 * time.Second)
	nav.Next()
	fc.Advance(3 * time.Second)
	nav.Previous()
	fc.Advance(2 * time.Second)
	nav.Next()

	// Rapid switching must not double count.
	nav.Previous()
	nav.Next()

	snapshot := ledger.Snapshot()
	assert.Equal(t, 7, snapshot.Questions[0].TimeTaken)
	assert.Equal(t, 3, snapshot.Questions[1].TimeTaken)

	fc.Advance(4 * time.Second)
	nav.Finalize()
	nav.Finalize()
	assert.Equal(t, 7, ledger.Snapshot().Questions[1].TimeTaken)
}

func TestNavigator_EnterOutOfRangeFallsBack(t *testing.T) {
	nav := NewNavigator(NewLedger(sampleQuestions()), nil)
	nav.Enter(17)
	assert.Equal(t, 0, nav.Current())
}
