package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventPublisher_PublishEvent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	messages, err := pubSub.Subscribe(ctx, "attempt-events")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(pubSub, "attempt-events", slog.Default())

	submittedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	event := NewAttemptSubmittedEvent(AttemptSubmittedEvent{
		AttemptID:   42,
		TestID:      7,
		StudentID:   3,
		Reason:      "timeout",
		SubmittedAt: submittedAt,
		TimeSpent:   600,
	})
	require.NoError(t, publisher.PublishEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "attempt.submitted", msg.Metadata.Get("event_type"))
		assert.Equal(t, "42", msg.Metadata.Get("attempt_id"))
		assert.Equal(t, "attempt-service", msg.Metadata.Get("source"))

		var decoded struct {
			Type EventType             `json:"type"`
			Data AttemptSubmittedEvent `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, EventAttemptSubmitted, decoded.Type)
		assert.Equal(t, uint(42), decoded.Data.AttemptID)
		assert.Equal(t, "timeout", decoded.Data.Reason)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published message")
	}
}

func TestPartitionKey_UsesAttemptID(t *testing.T) {
	msg, err := NewMessage(NewAttemptSubmittedEvent(AttemptSubmittedEvent{AttemptID: 42, TestID: 7, StudentID: 3}))
	require.NoError(t, err)

	produced, err := kafka.NewWithPartitioningMarshaler(partitionKey).Marshal("attempt-events", msg)
	require.NoError(t, err)
	require.NotNil(t, produced.Key)
	key, err := produced.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "42", string(key))
}

func TestPartitionKey_FallsBackToMessageID(t *testing.T) {
	msg := message.NewMessage("event-1", []byte("{}"))
	key, err := partitionKey("attempt-events", msg)
	require.NoError(t, err)
	assert.Equal(t, "event-1", key)
}

func TestEventFactories(t *testing.T) {
	at := time.Now()

	started := NewAttemptStartedEvent(AttemptStartedEvent{AttemptID: 1, StartedAt: at})
	expired := NewAttemptExpiredEvent(AttemptExpiredEvent{AttemptID: 1, ExpiredAt: at})
	graded := NewAttemptGradedEvent(AttemptGradedEvent{AttemptID: 1}, at)
	abandoned := NewAttemptAbandonedEvent(AttemptAbandonedEvent{AttemptID: 1, AbandonedAt: at})

	assert.Equal(t, EventAttemptStarted, started.Type)
	assert.Equal(t, EventAttemptExpired, expired.Type)
	assert.Equal(t, EventAttemptGraded, graded.Type)
	assert.Equal(t, EventAttemptAbandoned, abandoned.Type)
	assert.Equal(t, at, started.Timestamp)
	assert.NotEqual(t, started.ID, expired.ID)
	assert.Equal(t, eventVersion, graded.Version)
}

func TestMockEventPublisher(t *testing.T) {
	ctx := context.Background()
	mock := NewMockEventPublisher(slog.Default())

	require.NoError(t, mock.PublishEvent(ctx, NewAttemptStartedEvent(AttemptStartedEvent{AttemptID: 1})))
	require.NoError(t, mock.PublishEvent(ctx, NewAttemptGradedEvent(AttemptGradedEvent{AttemptID: 1}, time.Now())))

	assert.Len(t, mock.GetPublishedEvents(), 2)
	assert.Len(t, mock.EventsOfType(EventAttemptGraded), 1)

	mock.ClearEvents()
	assert.Empty(t, mock.GetPublishedEvents())
	assert.NoError(t, mock.Close())
}
