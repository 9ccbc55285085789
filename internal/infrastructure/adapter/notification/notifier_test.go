package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/config"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func giftNotification() external.Notification {
	return external.Notification{
		RecipientID: 42,
		Type:        external.NotificationGiftReceived,
		Title:       "You received a gift",
		Body:        "Lan sent you 100 gems",
		Data:        map[string]any{"giftId": "g-1"},
	}
}

type fakePublisher struct {
	channel string
	payload []byte
	err     error
	closed  bool
}

func (p *fakePublisher) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	p.channel = channel
	p.payload, _ = message.([]byte)
	return redis.NewIntResult(1, p.err)
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

func TestRedisNotifier_Notify(t *testing.T) {
	pub := &fakePublisher{}
	n := NewRedisNotifier(pub, "", fakes.NewClock(testNow), logger.NewNoopLogger())

	require.NoError(t, n.Notify(context.Background(), giftNotification()))
	assert.Equal(t, DefaultChannel, pub.channel)

	var msg Message
	require.NoError(t, json.Unmarshal(pub.payload, &msg))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, uint64(42), msg.RecipientID)
	assert.Equal(t, external.NotificationGiftReceived, msg.Type)
	assert.Equal(t, "Lan sent you 100 gems", msg.Body)
	assert.Equal(t, "g-1", msg.Data["giftId"])
	assert.True(t, msg.CreatedAt.Equal(testNow))

	require.NoError(t, n.Close())
	assert.True(t, pub.closed)
}

func TestRedisNotifier_PublishError(t *testing.T) {
	pub := &fakePublisher{err: errors.New("connection refused")}
	n := NewRedisNotifier(pub, "alerts", fakes.NewClock(testNow), logger.NewNoopLogger())

	err := n.Notify(context.Background(), giftNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, "alerts", pub.channel)
}

type fakeWriter struct {
	msgs []kafka.Message
	err  error
	ctx  context.Context
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	w.ctx = ctx
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaNotifier_KeysByRecipient(t *testing.T) {
	w := &fakeWriter{}
	n := NewKafkaNotifier(w, fakes.NewClock(testNow), logger.NewNoopLogger())

	require.NoError(t, n.Notify(context.Background(), giftNotification()))
	require.Len(t, w.msgs, 1)

	got := w.msgs[0]
	assert.Equal(t, "42", string(got.Key))
	assert.Equal(t, testNow, got.Time)
	require.Len(t, got.Headers, 1)
	assert.Equal(t, external.NotificationGiftReceived, string(got.Headers[0].Value))

	var msg Message
	require.NoError(t, json.Unmarshal(got.Value, &msg))
	assert.Equal(t, "You received a gift", msg.Title)
}

func TestKafkaNotifier_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	n := NewKafkaNotifier(w, fakes.NewClock(testNow), logger.NewNoopLogger())

	err := n.Notify(context.Background(), giftNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write notification")
}

func TestWithTimeout_BoundsContext(t *testing.T) {
	w := &fakeWriter{}
	clock := fakes.NewClock(testNow)
	d := WithTimeout(NewKafkaNotifier(w, clock, logger.NewNoopLogger()), 250*time.Millisecond, clock)

	require.NoError(t, d.Notify(context.Background(), giftNotification()))
	_, hasDeadline := w.ctx.Deadline()
	assert.True(t, hasDeadline)
	assert.Error(t, w.ctx.Err(), "context is canceled once Notify returns")
}

func TestWithTimeout_ZeroLeavesDispatcher(t *testing.T) {
	inner := NewLogNotifier(logger.NewNoopLogger())
	assert.Same(t, Dispatcher(inner), WithTimeout(inner, 0, fakes.NewClock(testNow)))
}

func TestNewDispatcher(t *testing.T) {
	clock := fakes.NewClock(testNow)
	log := logger.NewNoopLogger()

	t.Run("log driver", func(t *testing.T) {
		cfg := &config.Config{Notifications: config.NotificationsConfig{Driver: DriverLog}}
		d, err := NewDispatcher(context.Background(), cfg, clock, log)
		require.NoError(t, err)
		assert.IsType(t, &LogNotifier{}, d)
		assert.NoError(t, d.Notify(context.Background(), giftNotification()))
		assert.NoError(t, d.Close())
	})

	t.Run("kafka driver", func(t *testing.T) {
		cfg := &config.Config{
			Notifications: config.NotificationsConfig{Driver: DriverKafka, Timeout: time.Second},
			Kafka:         config.KafkaConfig{Brokers: []string{"localhost:9092"}},
		}
		d, err := NewDispatcher(context.Background(), cfg, clock, log)
		require.NoError(t, err)
		assert.IsType(t, &timeoutDispatcher{}, d)
		assert.NoError(t, d.Close())
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := &config.Config{Notifications: config.NotificationsConfig{Driver: "smtp"}}
		_, err := NewDispatcher(context.Background(), cfg, clock, log)
		assert.EqualError(t, err, "unsupported notifications driver: smtp")
	})
}
