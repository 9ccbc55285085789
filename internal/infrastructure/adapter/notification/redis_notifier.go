package notification

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
)

// redisPublisher is the part of *redis.Client the notifier needs
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	Close() error
}

// RedisNotifier publishes notifications on a Redis pub/sub channel
type RedisNotifier struct {
	rdb          redisPublisher
	channel      string
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewRedisNotifier creates a notifier over an existing client
func NewRedisNotifier(rdb redisPublisher, channel string, timeProvider coreport.TimeProvider, logger coreport.Logger) *RedisNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisNotifier{
		rdb:          rdb,
		channel:      channel,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"notifier": "redis", "channel": channel}),
	}
}

// Notify publishes one notification
func (n *RedisNotifier) Notify(ctx context.Context, notification external.Notification) error {
	payload, msg, err := encode(notification, n.timeProvider.Now())
	if err != nil {
		return err
	}

	receivers, err := n.rdb.Publish(ctx, n.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	n.logger.Debug("Notification published", map[string]any{
		"notification_id": msg.ID,
		"type":            msg.Type,
		"recipient_id":    msg.RecipientID,
		"receivers":       receivers,
	})
	return nil
}

// Close closes the Redis client
func (n *RedisNotifier) Close() error {
	return n.rdb.Close()
}
