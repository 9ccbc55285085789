package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/external"
)

// DefaultChannel is the Redis channel and Kafka topic notifications are published to
const DefaultChannel = "notifications"

// Message is the wire form of a notification
type Message struct {
	ID          string         `json:"id"`
	RecipientID uint64         `json:"recipient_id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Data        map[string]any `json:"data,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// encode stamps the notification with an id and time and marshals it
func encode(n external.Notification, now time.Time) ([]byte, *Message, error) {
	msg := &Message{
		ID:          uuid.NewString(),
		RecipientID: n.RecipientID,
		Type:        n.Type,
		Title:       n.Title,
		Body:        n.Body,
		Data:        n.Data,
		CreatedAt:   now.UTC(),
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	return payload, msg, nil
}
