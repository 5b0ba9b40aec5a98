// Package notify composes and delivers the notifications recorded in the
// outbox by listing workflow transactions.
package notify

import (
	"context"
	"errors"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/sirupsen/logrus"
)

const (
	maxBackoff      = time.Hour
	deliveryTimeout = 30 * time.Second
)

type Deliverer interface {
	Deliver(ctx context.Context, n domain.Notification) error
}

// Worker drains the outbox. Delivery is at least once: a record leased by a
// worker that dies is picked up again after its lease expires.
type Worker struct {
	repo        domain.NotificationRepository
	deliverer   Deliverer
	interval    time.Duration
	lease       time.Duration
	maxAttempts int
	baseBackoff time.Duration
	now         func() time.Time
}

func NewWorker(repo domain.NotificationRepository, deliverer Deliverer, cfg config.OutboxConfig) *Worker {
	w := &Worker{
		repo:        repo,
		deliverer:   deliverer,
		interval:    cfg.PollInterval,
		lease:       cfg.Lease,
		maxAttempts: cfg.MaxAttempts,
		baseBackoff: cfg.BaseBackoff,
		now:         func() time.Time { return time.Now().UTC() },
	}
	if w.interval <= 0 {
		w.interval = 5 * time.Second
	}
	if w.lease <= 0 {
		w.lease = time.Minute
	}
	if w.maxAttempts <= 0 {
		w.maxAttempts = 5
	}
	if w.baseBackoff <= 0 {
		w.baseBackoff = 30 * time.Second
	}
	return w
}

// Backoff returns the delay before retry number attempts+1.
func Backoff(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	logrus.WithField("interval", w.interval.String()).Info("Outbox worker started")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.Drain(ctx)
		select {
		case <-ctx.Done():
			logrus.Info("Outbox worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Drain delivers every due notification and returns how many were handled.
func (w *Worker) Drain(ctx context.Context) int {
	handled := 0
	for ctx.Err() == nil {
		ok, err := w.ProcessNext(ctx)
		if err != nil {
			logrus.WithError(err).Error("Outbox poll failed")
			return handled
		}
		if !ok {
			return handled
		}
		handled++
	}
	return handled
}

// ProcessNext claims and delivers one notification. It reports false when
// nothing was due.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	n, err := w.repo.ClaimNext(ctx, w.now(), w.lease)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}

	log := logrus.WithFields(logrus.Fields{
		"notificationId": n.ID.Hex(),
		"channel":        n.Channel,
		"event":          n.Event,
		"vehicleId":      n.VehicleID.Hex(),
	})

	deliverCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	err = w.deliverer.Deliver(deliverCtx, *n)
	cancel()

	now := w.now()
	if err == nil {
		if markErr := w.repo.MarkSent(ctx, n.ID, now); markErr != nil {
			return true, markErr
		}
		log.Info("Notification delivered")
		return true, nil
	}

	attempts := n.Attempts + 1
	dead := attempts >= w.maxAttempts || errors.Is(err, domain.ErrUnavailable)
	next := now.Add(Backoff(w.baseBackoff, attempts))
	if markErr := w.repo.MarkFailed(ctx, n.ID, attempts, err.Error(), next, dead); markErr != nil {
		return true, markErr
	}

	if dead {
		log.WithError(err).WithField("attempts", attempts).Error("Notification abandoned")
	} else {
		log.WithError(err).WithFields(logrus.Fields{
			"attempts":  attempts,
			"nextRetry": next,
		}).Warn("Notification delivery failed, will retry")
	}
	return true, nil
}
