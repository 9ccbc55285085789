package notification

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
)

// messageWriter is the part of *kafka.Writer the notifier needs
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes notifications to a Kafka topic keyed by recipient, so
// one recipient's notifications stay ordered within a partition
type KafkaNotifier struct {
	writer       messageWriter
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewKafkaWriter builds a writer for the notifications topic
func NewKafkaWriter(brokers []string, topic string, writeTimeout time.Duration, logger coreport.Logger) *kafka.Writer {
	if topic == "" {
		topic = DefaultChannel
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: writeTimeout,
		Logger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Debug(fmt.Sprintf(msg, args...), nil)
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			logger.Error(fmt.Sprintf(msg, args...), nil)
		}),
	}
}

// NewKafkaNotifier creates a notifier over a writer
func NewKafkaNotifier(writer messageWriter, timeProvider coreport.TimeProvider, logger coreport.Logger) *KafkaNotifier {
	return &KafkaNotifier{
		writer:       writer,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"notifier": "kafka"}),
	}
}

// Notify writes one notification
func (n *KafkaNotifier) Notify(ctx context.Context, notification external.Notification) error {
	now := n.timeProvider.Now()
	payload, msg, err := encode(notification, now)
	if err != nil {
		return err
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(msg.RecipientID, 10)),
		Value: payload,
		Time:  now,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(msg.Type)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	n.logger.Debug("Notification written", map[string]any{
		"notification_id": msg.ID,
		"type":            msg.Type,
		"recipient_id":    msg.RecipientID,
	})
	return nil
}

// Close flushes pending messages and closes the writer
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
