package realtime

import (
	"fmt"

	"github.com/teamsn/socialnetwork/internal/models"
)

// EnvelopeType discriminates the push messages delivered over a channel binding.
type EnvelopeType string

const (
	EnvelopeNewNotification EnvelopeType = "NEW_NOTIFICATION"
	EnvelopeUnreadCount     EnvelopeType = "UNREAD_COUNT_UPDATE"
	EnvelopeMarkedRead      EnvelopeType = "NOTIFICATIONS_MARKED_READ"
)

// Envelope is the discriminated push message. Notification is populated only
// for NEW_NOTIFICATION, UnreadCount only for UNREAD_COUNT_UPDATE. Envelopes
// are transient; they are never persisted or retried.
type Envelope struct {
	Type         EnvelopeType                 `json:"type"`
	Notification *models.NotificationResponse `json:"notification,omitempty"`
	UnreadCount  *int64                       `json:"unreadCount,omitempty"`
}

func NewNotificationEnvelope(notification *models.NotificationResponse) Envelope {
	return Envelope{Type: EnvelopeNewNotification, Notification: notification}
}

func UnreadCountEnvelope(count int64) Envelope {
	return Envelope{Type: EnvelopeUnreadCount, UnreadCount: &count}
}

func MarkedReadEnvelope() Envelope {
	return Envelope{Type: EnvelopeMarkedRead}
}

// NotificationTopic is the recipient-scoped address of a user's notification stream.
func NotificationTopic(userID uint) string {
	return fmt.Sprintf("notifications/%d", userID)
}

// ChatTopic is the recipient-scoped address of a user's chat stream.
func ChatTopic(userID uint) string {
	return fmt.Sprintf("chat/%d", userID)
}

// Publisher pushes a message to every channel binding subscribed to a topic.
// Delivery is best-effort fire-and-forget: no binding means a silent no-op,
// and a failed delivery is never reported back to domain code.
type Publisher interface {
	Publish(topic string, message interface{})
}
