package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/config"
)

// Supported drivers
const (
	DriverLog   = "log"
	DriverRedis = "redis"
	DriverKafka = "kafka"
)

// Dispatcher is a notifier that owns a connection
type Dispatcher interface {
	external.Notifier
	Close() error
}

// NewDispatcher builds the dispatcher selected by the notifications config. A
// Redis dispatcher pings the server before it is returned.
func NewDispatcher(ctx context.Context, cfg *config.Config, timeProvider coreport.TimeProvider, logger coreport.Logger) (Dispatcher, error) {
	var inner Dispatcher
	switch cfg.Notifications.Driver {
	case "", DriverLog:
		inner = NewLogNotifier(logger)
	case DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		inner = NewRedisNotifier(rdb, cfg.Notifications.Channel, timeProvider, logger)
	case DriverKafka:
		writer := NewKafkaWriter(cfg.Kafka.Brokers, cfg.Notifications.Channel, cfg.Kafka.WriteTimeout, logger)
		inner = NewKafkaNotifier(writer, timeProvider, logger)
	default:
		return nil, fmt.Errorf("unsupported notifications driver: %s", cfg.Notifications.Driver)
	}

	logger.Info("Notification dispatcher ready", map[string]any{"driver": cfg.Notifications.Driver})
	return WithTimeout(inner, cfg.Notifications.Timeout, timeProvider), nil
}

// timeoutDispatcher bounds every Notify call
type timeoutDispatcher struct {
	Dispatcher
	timeout      time.Duration
	timeProvider coreport.TimeProvider
}

// WithTimeout bounds each Notify call of d by timeout. A non-positive timeout returns d unchanged.
func WithTimeout(d Dispatcher, timeout time.Duration, timeProvider coreport.TimeProvider) Dispatcher {
	if timeout <= 0 {
		return d
	}
	return &timeoutDispatcher{Dispatcher: d, timeout: timeout, timeProvider: timeProvider}
}

func (t *timeoutDispatcher) Notify(ctx context.Context, notification external.Notification) error {
	ctx, cancel := t.timeProvider.WithTimeout(ctx, coreport.Duration(t.timeout))
	defer cancel()
	return t.Dispatcher.Notify(ctx, notification)
}
