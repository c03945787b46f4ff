// Package notify publishes lead tier changes for downstream consumers such
// as the sales team's alerting.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/aoe-motors/lead-tracker/internal/domain"
	"github.com/aoe-motors/lead-tracker/internal/pkg/logger"
)

// EventTierChanged is the type header value of tier change messages.
const EventTierChanged = "lead.tier_changed"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier implements scoring.Notifier on a Kafka topic. Messages are
// keyed by request ID so one lead's changes stay ordered on a partition.
type KafkaNotifier struct {
	writer messageWriter
}

// NewKafkaNotifier creates a notifier writing to topic on brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}
}

// NotifyTierChange publishes change.
func (n *KafkaNotifier) NotifyTierChange(ctx context.Context, change domain.TierChange) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal tier change: %w", err)
	}

	msg := kafka.Message{
		Key:     []byte(change.RequestID),
		Value:   data,
		Headers: []kafka.Header{{Key: "type", Value: []byte(EventTierChanged)}},
	}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write tier change: %w", err)
	}

	logger.Debug("tier change published", "request_id", change.RequestID, "from", change.From, "to", change.To)
	return nil
}

// Close flushes and closes the writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
