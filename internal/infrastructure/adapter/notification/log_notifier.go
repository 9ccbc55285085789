package notification

import (
	"context"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
)

// LogNotifier writes notifications to the log only
type LogNotifier struct {
	logger coreport.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(logger coreport.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(map[string]any{"notifier": "log"})}
}

// Notify logs the notification
func (n *LogNotifier) Notify(_ context.Context, notification external.Notification) error {
	n.logger.Info("Notification", map[string]any{
		"recipient_id": notification.RecipientID,
		"type":         notification.Type,
		"title":        notification.Title,
		"body":         notification.Body,
	})
	return nil
}

// Close is a no-op
func (n *LogNotifier) Close() error {
	return nil
}
