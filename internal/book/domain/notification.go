package domain

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotificationNotFound notification id does not exist for the user
var ErrNotificationNotFound = errors.New("notification not found")

const (
	// NotificationQueue rabbitmq queue carrying NotificationJob
	NotificationQueue = "book_notifications"
	// NotificationCollection mongo collection
	NotificationCollection = "notifications"
)

// NotificationType kind of notification
type NotificationType string

const (
	// NotifyBookRequested someone requested one of your books
	NotifyBookRequested NotificationType = "book_requested"
	// NotifyRequestUpdated your request / incoming request changed status
	NotifyRequestUpdated NotificationType = "request_updated"
)

// NotificationJob queue message produced by book request changes
type NotificationJob struct {
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	RequestID string           `json:"request_id"`
	BookID    string           `json:"book_id"`
	BookTitle string           `json:"book_title"`
	ActorID   string           `json:"actor_id"`
	Status    RequestStatus    `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
}

// Notification document of the notifications collection
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Type      NotificationType   `bson:"type" json:"type"`
	Payload   NotificationJob    `bson:"payload" json:"payload"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// NewNotification document for job
func NewNotification(job NotificationJob, now time.Time) Notification {
	at := job.CreatedAt
	if at.IsZero() {
		at = now
	}
	return Notification{
		UserID:    job.UserID,
		Type:      job.Type,
		Payload:   job,
		CreatedAt: at.UTC(),
	}
}
