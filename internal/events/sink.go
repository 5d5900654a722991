package events

import (
	"fmt"

	"github.com/diewo77/go-sourcing/internal/config"
)

// NewPublisher builds the publisher named by cfg.Sink.
func NewPublisher(cfg config.EventsConfig) (Publisher, error) {
	switch cfg.Sink {
	case "", "log":
		return LogPublisher{}, nil
	case "redis":
		return NewRedisPublisher(cfg.RedisAddr, cfg.RedisChannel), nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("kafka sink needs at least one broker")
		}
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.Sink)
	}
}
