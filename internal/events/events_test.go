package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatchCompletedEvent(t *testing.T) {
	avg := 6.42
	event := NewBatchCompletedEvent(BatchCompletedEvent{
		BatchID:      "b-1",
		OwnerID:      "staff-1",
		TotalRows:    3,
		PassedCount:  2,
		AverageScore: &avg,
	})

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventBatchCompleted, event.Type)
	assert.Equal(t, "thpt-score-service", event.Source)
	assert.Equal(t, "1.0", event.Version)
	assert.False(t, event.Timestamp.IsZero())

	other := NewBatchFailedEvent(BatchFailedEvent{BatchID: "b-2"})
	assert.NotEqual(t, event.ID, other.ID)
	assert.Equal(t, EventBatchFailed, other.Type)
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	event := NewBatchCompletedEvent(BatchCompletedEvent{BatchID: "b-1", TotalRows: 1})
	require.NoError(t, publisher.Publish(context.Background(), event))

	published := publisher.GetPublishedEvents()
	require.Len(t, published, 1)
	assert.Equal(t, event.ID, published[0].ID)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
	assert.NoError(t, publisher.Close())
}

func TestToMessage(t *testing.T) {
	event := NewBatchFailedEvent(BatchFailedEvent{BatchID: "b-9", Reason: "empty file"})

	msg, err := toMessage(context.Background(), event)
	require.NoError(t, err)

	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "batch.failed", msg.Metadata.Get("event_type"))
	assert.Equal(t, "thpt-score-service", msg.Metadata.Get("source"))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "b-9", data["batch_id"])
	assert.Equal(t, "empty file", data["reason"])
}

func TestNewKafkaEventPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaEventPublisher(PublisherConfig{TopicName: "t"})
	assert.Error(t, err)
}
