package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of events this service emits
type EventType string

const (
	EventBatchCompleted EventType = "batch.completed"
	EventBatchFailed    EventType = "batch.failed"
)

const (
	eventSource  = "thpt-score-service"
	eventVersion = "1.0"
)

// Event is the envelope published for every event
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// BatchCompletedEvent summarises a processed spreadsheet
type BatchCompletedEvent struct {
	BatchID           string    `json:"batch_id"`
	OwnerID           string    `json:"owner_id"`
	FileName          string    `json:"file_name"`
	TotalRows         int       `json:"total_rows"`
	PassedCount       int       `json:"passed_count"`
	BelowThreshold    int       `json:"below_threshold_count"`
	DisqualifiedCount int       `json:"disqualified_count"`
	InvalidCount      int       `json:"invalid_count"`
	AverageScore      *float64  `json:"average_score,omitempty"`
	CompletedAt       time.Time `json:"completed_at"`
}

// BatchFailedEvent reports a spreadsheet that could not be processed at all
type BatchFailedEvent struct {
	BatchID  string    `json:"batch_id"`
	OwnerID  string    `json:"owner_id"`
	FileName string    `json:"file_name"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func NewBatchCompletedEvent(data BatchCompletedEvent) *Event {
	return newEvent(EventBatchCompleted, data)
}

func NewBatchFailedEvent(data BatchFailedEvent) *Event {
	return newEvent(EventBatchFailed, data)
}

func newEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}
