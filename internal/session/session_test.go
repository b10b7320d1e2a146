package session

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/SAP-F-2025/attempt-service/internal/errors"
	"github.com/SAP-F-2025/attempt-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPersistence struct {
	mock.Mock
}

func (m *MockPersistence) SaveAttemptSnapshot(ctx context.Context, attemptID uint, snapshot *models.LedgerSnapshot) error {
	args := m.Called(ctx, attemptID, snapshot)
	return args.Error(0)
}

func (m *MockPersistence) SubmitAttempt(ctx context.Context, attemptID uint, payload *models.SubmissionPayload) (*models.ScoreResult, error) {
	args := m.Called(ctx, attemptID, payload)
	var result *models.ScoreResult
	if r := args.Get(0); r != nil {
		result = r.(*models.ScoreResult)
	}
	return result, args.Error(1)
}

func newTestSession(t *testing.T, fc *fakeClock, persistence Persistence) *Session {
	t.Helper()
	s, err := New(Config{
		AttemptID:        7,
		Questions:        sampleQuestions(),
		Duration:         time.Minute,
		AutoSaveInterval: time.Hour,
		Now:              fc.Now,
	}, persistence)
	require.NoError(t, err)
	return s
}

func reasonIs(reason models.SubmitReason) interface{} {
	return mock.MatchedBy(func(p *models.SubmissionPayload) bool { return p.Reason == reason })
}

func TestSession_ManualSubmitThenStaleTimer(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	result := &models.ScoreResult{TotalPoints: 1, MaxPoints: 5, Percentage: 20}
	persistence.On("SubmitAttempt", ctx, uint(7), reasonIs(models.SubmitManual)).Return(result, nil).Once()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Ledger().SelectOption(1, 0))

	fc.Advance(45 * time.Second)
	got, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, result, got)
	assert.Equal(t, StateClosed, s.State())

	fc.Advance(15 * time.Second)
	s.Tick()

	_, err = s.submit(ctx, models.SubmitTimeout)
	assert.ErrorIs(t, err, ErrSessionClosed)

	persistence.AssertNumberOfCalls(t, "SubmitAttempt", 1)
	assert.Equal(t, result, s.Result())
}

func TestSession_TimerExpiryAutoSubmits(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	persistence.On("SubmitAttempt", ctx, uint(7), mock.MatchedBy(func(p *models.SubmissionPayload) bool {
		return p.Reason == models.SubmitTimeout && p.ElapsedSeconds == 60 && len(p.Answers) == 5
	})).Return(&models.ScoreResult{}, nil).Once()

	require.NoError(t, s.Start(ctx))
	for i := 0; i < 60; i++ {
		fc.Advance(time.Second)
		s.Tick()
	}

	assert.Equal(t, StateClosed, s.State())
	persistence.AssertExpectations(t)

	fc.Advance(time.Second)
	s.Tick()
	persistence.AssertNumberOfCalls(t, "SubmitAttempt", 1)
}

func TestSession_FailedSubmitCanBeRetried(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	persistence.On("SubmitAttempt", ctx, uint(7), mock.Anything).Return(nil, errors.New("503 service unavailable")).Once()
	persistence.On("SubmitAttempt", ctx, uint(7), mock.Anything).Return(&models.ScoreResult{TotalPoints: 3}, nil).Once()

	require.NoError(t, s.Start(ctx))

	_, err := s.Submit(ctx)
	require.Error(t, err)
	assert.Equal(t, StateActive, s.State())
	assert.True(t, s.saver.Running(), "auto-save resumes while the attempt is still open")

	result, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3.0, result.TotalPoints)
	assert.False(t, s.saver.Running())
}

func TestSession_ServerRejectsTerminalAttempt(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	persistence.On("SubmitAttempt", ctx, uint(7), mock.Anything).Return(nil, ErrAttemptTerminal).Once()

	require.NoError(t, s.Start(ctx))
	_, err := s.Submit(ctx)
	assert.ErrorIs(t, err, ErrAttemptTerminal)
	assert.Equal(t, StateClosed, s.State())

	_, err = s.Submit(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestSession_AutoSaveOnTerminalAttemptClosesSession(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	persistence.On("SaveAttemptSnapshot", ctx, uint(7), mock.Anything).Return(ErrAttemptTerminal).Once()

	expired := false
	s.clock.OnExpire(func() { expired = true })
	require.NoError(t, s.Start(ctx))

	err := s.saver.SaveNow(ctx)
	assert.ErrorIs(t, err, ErrAttemptTerminal)
	assert.Equal(t, StateClosed, s.State())

	_, err = s.Submit(ctx)
	assert.ErrorIs(t, err, ErrSessionClosed)

	fc.Advance(2 * time.Minute)
	s.Tick()
	assert.False(t, expired)
	assert.Eventually(t, func() bool { return !s.saver.Running() }, time.Second, 10*time.Millisecond)
	persistence.AssertNotCalled(t, "SubmitAttempt", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_InvalidLedgerBlocksSubmission(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	require.NoError(t, s.Resume(ctx, nil))

	// Bypass the ledger's own checks to simulate a corrupted entry.
	s.ledger.entries[1].answer = models.ChoiceAnswer(models.SingleChoice, 0, 1)

	_, err := s.Submit(ctx)
	var errs apperrors.ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, StateActive, s.State())
	persistence.AssertNotCalled(t, "SubmitAttempt", mock.Anything, mock.Anything, mock.Anything)
	s.saver.Stop()
}

func TestSession_AutoSaveSendsPositionAndStopsOnSubmit(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)
	s := newTestSession(t, fc, persistence)

	persistence.On("SaveAttemptSnapshot", ctx, uint(7), mock.MatchedBy(func(snap *models.LedgerSnapshot) bool {
		return snap.AttemptID == 7 && snap.CurrentIndex == 2 && snap.Questions[2].TimeTaken == 4
	})).Return(nil).Once()
	persistence.On("SubmitAttempt", ctx, uint(7), mock.Anything).Return(&models.ScoreResult{}, nil).Once()

	require.NoError(t, s.Start(ctx))
	s.Navigator().GoTo(2)
	fc.Advance(4 * time.Second)

	require.NoError(t, s.saver.SaveNow(ctx))

	_, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, s.saver.Running())
	persistence.AssertExpectations(t)
}

func TestSession_Resume(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClock()
	persistence := new(MockPersistence)

	s, err := New(Config{
		AttemptID:        7,
		Questions:        sampleQuestions(),
		Duration:         time.Minute,
		Deadline:         fc.Now().Add(20 * time.Second),
		AutoSaveInterval: time.Hour,
		Now:              fc.Now,
	}, persistence)
	require.NoError(t, err)

	snapshot := &models.LedgerSnapshot{
		AttemptID:    7,
		CurrentIndex: 3,
		Questions: []models.QuestionState{
			{QuestionID: 4, Answer: models.TextAnswer(models.Numerical, "4"), Visited: true, TimeTaken: 30},
		},
	}
	require.NoError(t, s.Resume(ctx, snapshot))
	defer s.saver.Stop()

	assert.Equal(t, 3, s.Navigator().Current())
	assert.Equal(t, 20*time.Second, s.Remaining())
	answer, _ := s.Ledger().Answer(4)
	assert.Equal(t, "4", answer.Text)

	assert.Error(t, s.Start(ctx), "a running session cannot start again")
}

func TestNew_RequiresQuestionsAndDuration(t *testing.T) {
	_, err := New(Config{Duration: time.Minute}, new(MockPersistence))
	assert.Error(t, err)

	_, err = New(Config{Questions: sampleQuestions()}, new(MockPersistence))
	assert.Error(t, err)
}

func TestSession_SubmitBeforeStart(t *testing.T) {
	s := newTestSession(t, newFakeClock(), new(MockPersistence))
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotStarted)
}
