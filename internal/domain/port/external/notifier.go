package external

import "context"

// Notification types
const (
	NotificationGiftReceived        = "gift_received"
	NotificationAchievementUnlocked = "achievement_unlocked"
	NotificationWithdrawalUpdated   = "withdrawal_updated"
)

// Notification is a message for one recipient
type Notification struct {
	RecipientID uint64         `json:"recipient_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        map[string]any `json:"data,omitempty"`
}

// Notifier dispatches notifications. Delivery is fire-and-forget: callers log a
// returned error and carry on.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}
