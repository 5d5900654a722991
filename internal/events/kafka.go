package events

import (
	"context"
	"fmt"

	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events keyed by negId so one negotiation stays on one partition.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
	logger.Log.Info("kafka publisher initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return &KafkaPublisher{writer: w, topic: topic}
}

func (p *KafkaPublisher) PublishAccepted(ctx context.Context, evt NegotiationAccepted) error {
	data, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{Key: []byte(evt.Key()), Value: data}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", p.topic, err)
	}
	logger.Info(ctx, "event published", zap.String("topic", p.topic), zap.String("neg_id", evt.NegID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
