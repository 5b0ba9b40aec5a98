package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/sirupsen/logrus"
)

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Broadcaster pushes a message to every connected administrator.
type Broadcaster interface {
	Broadcast(message []byte) int
}

// Dispatcher routes an outbox record to its channel.
type Dispatcher struct {
	Email    EmailSender
	Telegram TelegramSender
	Push     Broadcaster
}

func (d *Dispatcher) Deliver(ctx context.Context, n domain.Notification) error {
	switch n.Channel {
	case domain.ChannelAdminPush:
		if d.Push == nil {
			return fmt.Errorf("admin push: %w", domain.ErrUnavailable)
		}
		delivered := d.Push.Broadcast(n.Payload)
		logrus.WithFields(logrus.Fields{
			"vehicleId": n.VehicleID.Hex(),
			"admins":    delivered,
		}).Debug("Admin push broadcast")
		return nil

	case domain.ChannelEmail:
		if d.Email == nil {
			return fmt.Errorf("email: %w", domain.ErrUnavailable)
		}
		return d.Email.SendEmail(ctx, n.Recipient, n.Subject, n.Body)

	case domain.ChannelTelegram:
		if d.Telegram == nil {
			return fmt.Errorf("telegram: %w", domain.ErrUnavailable)
		}
		chatID, err := strconv.ParseInt(n.Recipient, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid telegram chat id %q: %w", n.Recipient, domain.ErrUnavailable)
		}
		return d.Telegram.SendMessage(ctx, chatID, n.Body)
	}
	return fmt.Errorf("unknown channel %q: %w", n.Channel, domain.ErrUnavailable)
}
