// Package email delivers transactional email through Resend.
package email

import (
	"context"
	"fmt"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/resend/resend-go/v2"
)

type Sender struct {
	client *resend.Client
	from   string
}

// NewSender returns nil when no API key is configured.
func NewSender(cfg config.EmailConfig) *Sender {
	if cfg.APIKey == "" {
		return nil
	}
	return &Sender{client: resend.NewClient(cfg.APIKey), from: cfg.From}
}

func (s *Sender) SendEmail(ctx context.Context, to, subject, html string) error {
	if s == nil {
		return fmt.Errorf("email: %w", domain.ErrUnavailable)
	}
	_, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return &domain.UpstreamError{Service: "resend", Err: err}
	}
	return nil
}
