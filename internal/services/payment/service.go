package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"
)

// ErrInvalidSignature is returned for webhook payloads that fail verification.
var ErrInvalidSignature = errors.New("invalid signature")

// FeeIntent is what the client needs to confirm a listing fee payment.
type FeeIntent struct {
	PaymentIntentID string `json:"paymentIntentId"`
	ClientSecret    string `json:"clientSecret"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

// IntentCreator opens a payment intent with the provider.
type IntentCreator interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (id, clientSecret string, err error)
}

type Service interface {
	CreateListingFee(ctx context.Context, p domain.Principal, vehicleID string) (FeeIntent, error)
	// HandleWebhook verifies and applies a provider event. Unknown events and
	// intents that match no listing are acknowledged without effect.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	vehicles repository.VehicleRepository
	intents  IntentCreator
	cfg      config.StripeConfig
	now      func() time.Time
}

// NewService builds the listing fee flow. A nil intents disables fee creation.
func NewService(vehicles repository.VehicleRepository, intents IntentCreator, cfg config.StripeConfig) Service {
	if cfg.Currency == "" {
		cfg.Currency = "cop"
	}
	return &service{
		vehicles: vehicles,
		intents:  intents,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) CreateListingFee(ctx context.Context, p domain.Principal, vehicleID string) (FeeIntent, error) {
	if s.intents == nil || s.cfg.ListingFee <= 0 {
		return FeeIntent{}, fmt.Errorf("%w: listing fee payments", domain.ErrUnavailable)
	}
	oid, err := domain.ParseID("vehicle", vehicleID)
	if err != nil {
		return FeeIntent{}, err
	}
	vehicle, err := s.vehicles.GetByID(ctx, oid)
	if err != nil {
		return FeeIntent{}, err
	}
	if !p.CanManage(vehicle.SellerID) {
		return FeeIntent{}, domain.ErrForbidden
	}
	if vehicle.ListingFee != nil && vehicle.ListingFee.Status == models.ListingFeePaid {
		return FeeIntent{}, fmt.Errorf("%w: listing fee already paid", domain.ErrConflict)
	}

	currency := strings.ToLower(s.cfg.Currency)
	id, secret, err := s.intents.CreateIntent(ctx, s.cfg.ListingFee, currency, map[string]string{
		"vehicleId": oid.Hex(),
		"sellerId":  vehicle.SellerID.Hex(),
	})
	if err != nil {
		return FeeIntent{}, err
	}

	if err := s.vehicles.SetListingFee(ctx, oid, models.ListingFee{
		PaymentIntentID: id,
		Amount:          s.cfg.ListingFee,
		Currency:        currency,
		Status:          models.ListingFeePending,
	}); err != nil {
		return FeeIntent{}, err
	}
	return FeeIntent{PaymentIntentID: id, ClientSecret: secret, Amount: s.cfg.ListingFee, Currency: currency}, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	secret := strings.TrimSpace(s.cfg.WebhookSecret)
	if secret == "" {
		return fmt.Errorf("%w: stripe webhook", domain.ErrUnavailable)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return ErrInvalidSignature
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil || pi.ID == "" {
			logrus.WithField("eventId", event.ID).Warn("Ignoring malformed payment intent event")
			return nil
		}
		vehicle, err := s.vehicles.MarkListingFeePaid(ctx, pi.ID, s.now())
		if errors.Is(err, domain.ErrNotFound) {
			logrus.WithField("paymentIntentId", pi.ID).Info("Payment intent matches no listing")
			return nil
		}
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"vehicleId":       vehicle.ID.Hex(),
			"paymentIntentId": pi.ID,
		}).Info("Listing fee paid")
	default:
		logrus.WithField("type", event.Type).Debug("Ignoring stripe event")
	}
	return nil
}

// Stripe creates payment intents through the Stripe API.
type Stripe struct{}

// NewStripe sets the API key and returns nil when none is configured.
func NewStripe(cfg config.StripeConfig) *Stripe {
	if cfg.SecretKey == "" {
		return nil
	}
	stripe.Key = cfg.SecretKey
	return &Stripe{}
}

func (Stripe) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: metadata,
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", &domain.UpstreamError{Service: "stripe", Err: err}
	}
	return pi.ID, pi.ClientSecret, nil
}
