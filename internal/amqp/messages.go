package amqp

import (
	"encoding/json"
	"time"

	"finclient/internal/core"
)

// NotificationMessage is the wire form of a user notification.
type NotificationMessage struct {
	UserID    string    `json:"user_id"`
	Level     string    `json:"level"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotificationMessage converts a notification, stamping it now when it
// carries no time.
func NewNotificationMessage(n core.Notification) *NotificationMessage {
	ts := n.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	return &NotificationMessage{
		UserID:    n.UserID,
		Level:     string(n.Level),
		Title:     n.Title,
		Message:   n.Message,
		Timestamp: ts,
	}
}

// ToJSON converts the message to JSON bytes
func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *NotificationMessage) Notification() core.Notification {
	return core.Notification{
		UserID:  m.UserID,
		Level:   core.NotificationLevel(m.Level),
		Title:   m.Title,
		Message: m.Message,
		Time:    m.Timestamp,
	}
}

// NotificationMessageFromJSON creates a message from JSON bytes
func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
