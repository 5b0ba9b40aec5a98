package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/memory"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const webhookSecret = "whsec_test"

type fakeIntents struct {
	calls    int
	metadata map[string]string
	err      error
}

func (f *fakeIntents) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	f.calls++
	f.metadata = metadata
	if f.err != nil {
		return "", "", f.err
	}
	return "pi_123", "pi_123_secret", nil
}

func setup(t *testing.T, intents IntentCreator) (Service, *memory.Store, models.Vehicle) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	v, err := repos.Vehicles.Create(context.Background(), models.Vehicle{
		SellerID: primitive.NewObjectID(),
		Status:   domain.StatusPending,
	}, nil)
	require.NoError(t, err)
	svc := NewService(repos.Vehicles, intents, config.StripeConfig{
		ListingFee:    2000000,
		Currency:      "COP",
		WebhookSecret: webhookSecret,
	})
	return svc, store, v
}

func signedEvent(t *testing.T, eventType string, object map[string]any) ([]byte, string) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"id":     "evt_1",
		"object": "event",
		"type":   eventType,
		"data":   map[string]any{"object": object},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

func TestCreateListingFeeStoresPendingFee(t *testing.T) {
	intents := &fakeIntents{}
	svc, store, v := setup(t, intents)
	owner := domain.Principal{UserID: v.SellerID, Role: domain.RoleUser}

	fee, err := svc.CreateListingFee(context.Background(), owner, v.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret", fee.ClientSecret)
	assert.Equal(t, "cop", fee.Currency)
	assert.Equal(t, v.ID.Hex(), intents.metadata["vehicleId"])

	stored, err := store.Repositories().Vehicles.GetByID(context.Background(), v.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ListingFee)
	assert.Equal(t, models.ListingFeePending, stored.ListingFee.Status)

	stranger := domain.Principal{UserID: primitive.NewObjectID(), Role: domain.RoleUser}
	_, err = svc.CreateListingFee(context.Background(), stranger, v.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateListingFeeUnavailableWithoutProvider(t *testing.T) {
	svc, _, v := setup(t, nil)
	_, err := svc.CreateListingFee(context.Background(), domain.Principal{UserID: v.SellerID}, v.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestWebhookMarksFeePaid(t *testing.T) {
	svc, store, v := setup(t, &fakeIntents{})
	ctx := context.Background()
	_, err := svc.CreateListingFee(ctx, domain.Principal{UserID: v.SellerID}, v.ID.Hex())
	require.NoError(t, err)

	payload, sig := signedEvent(t, "payment_intent.succeeded", map[string]any{"id": "pi_123", "object": "payment_intent"})
	require.NoError(t, svc.HandleWebhook(ctx, payload, sig))

	stored, err := store.Repositories().Vehicles.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingFeePaid, stored.ListingFee.Status)
	assert.Equal(t, "pi_123", stored.ReferenceNumber)

	_, err = svc.CreateListingFee(ctx, domain.Principal{UserID: v.SellerID}, v.ID.Hex())
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestWebhookIgnoresUnknownData(t *testing.T) {
	svc, _, _ := setup(t, &fakeIntents{})
	ctx := context.Background()

	payload, sig := signedEvent(t, "payment_intent.succeeded", map[string]any{"id": "pi_unknown", "object": "payment_intent"})
	assert.NoError(t, svc.HandleWebhook(ctx, payload, sig))

	payload, sig = signedEvent(t, "charge.refunded", map[string]any{"id": "ch_1", "object": "charge"})
	assert.NoError(t, svc.HandleWebhook(ctx, payload, sig))

	err := svc.HandleWebhook(ctx, payload, "t=1,v1=bad")
	assert.True(t, errors.Is(err, ErrInvalidSignature))
}
