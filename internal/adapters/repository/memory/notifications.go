package memory

import (
	"context"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository struct{ s *Store }

func (r *NotificationRepository) Enqueue(_ context.Context, notifications ...domain.Notification) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()
	r.s.enqueueLocked(notifications)
	return nil
}

func (r *NotificationRepository) ClaimNext(_ context.Context, now time.Time, lease time.Duration) (*domain.Notification, error) {
	if err := r.s.lock(); err != nil {
		return nil, err
	}
	defer r.s.mu.Unlock()

	best := -1
	for i, n := range r.s.notifications {
		due := (n.Status == domain.NotificationPending && !n.NextAttemptAt.After(now)) ||
			(n.Status == domain.NotificationProcessing && n.LockedUntil != nil && !n.LockedUntil.After(now))
		if !due {
			continue
		}
		if best == -1 || n.NextAttemptAt.Before(r.s.notifications[best].NextAttemptAt) {
			best = i
		}
	}
	if best == -1 {
		return nil, nil
	}

	n := &r.s.notifications[best]
	locked := now.Add(lease)
	n.Status = domain.NotificationProcessing
	n.LockedUntil = &locked
	n.UpdatedAt = now
	claimed := *n
	return &claimed, nil
}

func (r *NotificationRepository) MarkSent(_ context.Context, id primitive.ObjectID, at time.Time) error {
	return r.update(id, func(n *domain.Notification) {
		sent := at
		n.Status = domain.NotificationSent
		n.SentAt = &sent
		n.LockedUntil = nil
		n.LastError = ""
		n.Attempts++
		n.UpdatedAt = at
	})
}

func (r *NotificationRepository) MarkFailed(_ context.Context, id primitive.ObjectID, attempts int, lastErr string, next time.Time, dead bool) error {
	return r.update(id, func(n *domain.Notification) {
		n.Status = domain.NotificationPending
		if dead {
			n.Status = domain.NotificationDead
		}
		n.Attempts = attempts
		n.LastError = lastErr
		n.NextAttemptAt = next
		n.LockedUntil = nil
		n.UpdatedAt = time.Now().UTC()
	})
}

func (r *NotificationRepository) update(id primitive.ObjectID, fn func(n *domain.Notification)) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	for i := range r.s.notifications {
		if r.s.notifications[i].ID == id {
			fn(&r.s.notifications[i])
			return nil
		}
	}
	return domain.NotFound("notification")
}
