package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository implements domain.NotificationRepository on the
// notifications collection.
type NotificationRepository struct {
	collection *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection("notifications"),
	}
}

// InsertNotifications fills defaults and stores the given records. Pass a
// session context to make the insert part of a transaction.
func InsertNotifications(ctx context.Context, coll *mongo.Collection, notifications []domain.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		docs = append(docs, PrepareNotification(n, now))
	}
	_, err := coll.InsertMany(ctx, docs)
	return err
}

// PrepareNotification assigns an id and the initial delivery state.
func PrepareNotification(n domain.Notification, now time.Time) domain.Notification {
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.Status = domain.NotificationPending
	n.Attempts = 0
	if n.NextAttemptAt.IsZero() {
		n.NextAttemptAt = now
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	return n
}

func (r *NotificationRepository) Enqueue(ctx context.Context, notifications ...domain.Notification) error {
	if err := InsertNotifications(ctx, r.collection, notifications); err != nil {
		return fmt.Errorf("enqueue notifications: %w", err)
	}
	return nil
}

// ClaimNext atomically leases one due record. Records whose lease expired
// while processing are claimed again.
func (r *NotificationRepository) ClaimNext(ctx context.Context, now time.Time, lease time.Duration) (*domain.Notification, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"status": domain.NotificationPending, "nextAttemptAt": bson.M{"$lte": now}},
			bson.M{"status": domain.NotificationProcessing, "lockedUntil": bson.M{"$lte": now}},
		},
	}
	update := bson.M{"$set": bson.M{
		"status":      domain.NotificationProcessing,
		"lockedUntil": now.Add(lease),
		"updatedAt":   now,
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "nextAttemptAt", Value: 1}}).
		SetReturnDocument(options.After)

	var n domain.Notification
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("claim notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set":   bson.M{"status": domain.NotificationSent, "sentAt": at, "updatedAt": at},
		"$unset": bson.M{"lockedUntil": "", "lastError": ""},
		"$inc":   bson.M{"attempts": 1},
	})
	if err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time, dead bool) error {
	status := domain.NotificationPending
	if dead {
		status = domain.NotificationDead
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"status":        status,
			"attempts":      attempts,
			"lastError":     lastErr,
			"nextAttemptAt": next,
			"updatedAt":     time.Now().UTC(),
		},
		"$unset": bson.M{"lockedUntil": ""},
	})
	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}
