// Package audit publishes dashboard activity to Kafka: auth events and
// every product/user mutation together with its audit reason. Publishing
// is best effort; a broker failure is logged and never shown in the UI.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
)

type Event struct {
	Type        string    `json:"type"`
	UserID      string    `json:"user_id,omitempty"`
	Resource    string    `json:"resource,omitempty"`
	ResourceID  string    `json:"resource_id,omitempty"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher struct {
	writer *kafka.Writer
}

// New returns nil when no brokers are configured; a nil Publisher is
// safe to use and publishes nothing.
func New(brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		return nil
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		logging.FromContext(ctx).Error("audit_marshal_failed", "type", event.Type, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.UserID),
		Value: data,
	}); err != nil {
		logging.FromContext(ctx).Error("audit_publish_failed", "type", event.Type, "error", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
