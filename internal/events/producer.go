package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/motorides/dispatch/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Producer mirrors every ride event onto a Kafka topic so downstream
// consumers (billing, analytics) get a durable feed, unlike the
// fire-and-forget WebSocket fan-out. With no brokers configured the
// producer is a no-op.
type Producer struct {
	writer *kafka.Writer
	logger *logger.Logger
}

type envelope struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	At      time.Time   `json:"at"`
}

// NewProducer creates a ride event producer. brokers may be empty.
func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	if len(brokers) == 0 {
		return &Producer{logger: log}
	}
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &Producer{writer: w, logger: log}
}

// Publish writes one event keyed by ride id. Failures are logged and
// dropped; the event stream is a mirror, never the source of truth.
func (p *Producer) Publish(event, rideID string, payload interface{}) {
	if p.writer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := json.Marshal(envelope{Event: event, Payload: payload, At: time.Now().UTC()})
	if err != nil {
		p.logger.Error("Failed to marshal ride event", logger.Err(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(rideID), Value: b}); err != nil {
		p.logger.Warn("Failed to publish ride event to Kafka",
			logger.String("event", event),
			logger.String("ride_id", rideID),
			logger.Err(err),
		)
	}
}

// Close flushes and closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
