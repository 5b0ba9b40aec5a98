package domain

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationChannel selects the transport used to deliver a notification.
type NotificationChannel string

const (
	ChannelAdminPush NotificationChannel = "admin_push"
	ChannelEmail     NotificationChannel = "email"
	ChannelTelegram  NotificationChannel = "telegram"
)

type NotificationStatus string

const (
	NotificationPending    NotificationStatus = "pending"
	NotificationProcessing NotificationStatus = "processing"
	NotificationSent       NotificationStatus = "sent"
	NotificationDead       NotificationStatus = "dead"
)

const (
	EventListingSubmitted = "listing.submitted"
	EventListingApproved  = "listing.approved"
	EventListingRejected  = "listing.rejected"
)

// Notification is an outbox record written in the same transaction as the
// state change that caused it, and delivered later by the outbox worker.
type Notification struct {
	ID        primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Channel   NotificationChannel `json:"channel" bson:"channel"`
	Event     string              `json:"event" bson:"event"`
	VehicleID primitive.ObjectID  `json:"vehicleId" bson:"vehicleId"`

	// Recipient is an email address for ChannelEmail and a chat id for
	// ChannelTelegram. Admin pushes go to every connected administrator.
	Recipient string `json:"recipient,omitempty" bson:"recipient,omitempty"`
	Subject   string `json:"subject,omitempty" bson:"subject,omitempty"`
	Body      string `json:"body,omitempty" bson:"body,omitempty"`
	Payload   []byte `json:"payload,omitempty" bson:"payload,omitempty"`

	Status        NotificationStatus `json:"status" bson:"status"`
	Attempts      int                `json:"attempts" bson:"attempts"`
	LastError     string             `json:"lastError,omitempty" bson:"lastError,omitempty"`
	NextAttemptAt time.Time          `json:"nextAttemptAt" bson:"nextAttemptAt"`
	LockedUntil   *time.Time         `json:"lockedUntil,omitempty" bson:"lockedUntil,omitempty"`
	SentAt        *time.Time         `json:"sentAt,omitempty" bson:"sentAt,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// NotificationRepository defines the outbox storage used by the worker.
type NotificationRepository interface {
	// Enqueue stores notifications outside of any listing write.
	Enqueue(ctx context.Context, notifications ...Notification) error

	// ClaimNext leases the oldest due notification. It returns nil when nothing is due.
	ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*Notification, error)

	MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error

	// MarkFailed records a failed attempt and schedules the next one, or buries the
	// notification when dead is true.
	MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time, dead bool) error
}
