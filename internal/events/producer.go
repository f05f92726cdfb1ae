package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Producer publishes events to a Kafka topic as JSON keyed by subscription
// ID, so all events for one subscription land on the same partition in
// order.
type Producer struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

func NewProducer(brokers []string, topic string, logger zerolog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
	return &Producer{writer: writer, logger: logger}
}

func (p *Producer) PaymentExecuted(ctx context.Context, ev PaymentExecuted) {
	p.publish(ctx, "payment_executed", ev.SubscriptionID, ev)
}

func (p *Producer) FeesDistributed(ctx context.Context, ev FeesDistributed) {
	p.publish(ctx, "fees_distributed", ev.SubscriptionID, ev)
}

func (p *Producer) AnnualFeesPrepaid(ctx context.Context, ev AnnualFeesPrepaid) {
	p.publish(ctx, "annual_fees_prepaid", ev.SubscriptionID, ev)
}

func (p *Producer) publish(ctx context.Context, eventType, key string, payload any) {
	value, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error().Err(err).Str("event_type", eventType).Msg("marshal event")
		return
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error().Err(err).
			Str("event_type", eventType).
			Str("subscription_id", key).
			Msg("publish event")
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
