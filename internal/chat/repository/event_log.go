package repository

import (
	"context"
	"encoding/json"

	"chat_sync_service/internal/chat/domain"

	"github.com/segmentio/kafka-go"
)

// EventLog definition the durable append-only event pipeline consumed
// by notification and archival workers
type EventLog interface {
	Append(ctx context.Context, conversationID string, event domain.Event) error
}

type kafkaEventLog struct {
	writer *kafka.Writer
}

// NewKafkaEventLog create an EventLog backed by a kafka topic
func NewKafkaEventLog(writer *kafka.Writer) EventLog {
	return &kafkaEventLog{writer: writer}
}

// Append writes the event keyed by conversation id so one conversation
// stays on one partition in order.
func (l *kafkaEventLog) Append(ctx context.Context, conversationID string, event domain.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return l.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(conversationID),
		Value: data,
	})
}
