package events

import (
	"context"
	"fmt"

	"github.com/diewo77/go-sourcing/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher sends events on a pub/sub channel.
type RedisPublisher struct {
	client  redisPublisher
	closer  func() error
	channel string
}

func NewRedisPublisher(addr, channel string) *RedisPublisher {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisPublisher{client: client, closer: client.Close, channel: channel}
}

func (p *RedisPublisher) PublishAccepted(ctx context.Context, evt NegotiationAccepted) error {
	data, err := evt.Marshal()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	logger.Info(ctx, "event published", zap.String("channel", p.channel), zap.String("neg_id", evt.NegID))
	return nil
}

func (p *RedisPublisher) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer()
}
