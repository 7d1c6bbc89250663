package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"flora-kart/internal/config"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	writer messageWriter
	topic  string
	logger zerolog.Logger
}

// NewKafkaPublisher writes events to cfg.Topic keyed by order id.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newKafkaPublisher(w, cfg.Topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger zerolog.Logger) *kafkaPublisher {
	return &kafkaPublisher{
		writer: w,
		topic:  topic,
		logger: logger.With().Str("component", "event-publisher").Logger(),
	}
}

func encode(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode event: %w", err)
	}

	return kafka.Message{
		Key:   []byte(event.OrderID.String()),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(event.Type)},
			{Key: "x-event-version", Value: []byte(Version)},
		},
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) {
	msg, err := encode(event)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to encode event")
		return
	}

	// The request context may already be finished once the response is written.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", p.topic).
			Str("event_type", string(event.Type)).
			Str("order_id", event.OrderID.String()).
			Msg("failed to publish event")
		return
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("event_type", string(event.Type)).
		Str("order_id", event.OrderID.String()).
		Msg("event published")
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}
