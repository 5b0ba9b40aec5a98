package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleVehicle() models.Vehicle {
	v := models.Vehicle{ID: primitive.NewObjectID(), Status: domain.StatusPending}
	v.Brand, v.Model, v.Year = "Renault", "Duster", 2021
	v.SellerContact = models.SellerContact{Name: "Luis", Email: "luis@x.com", Phone: "3001234567"}
	return v
}

func TestListingSubmittedBuildsPushAndAdminEmail(t *testing.T) {
	c := Composer{AdminEmail: "admin@1auto.market", BaseURL: "https://1auto.market"}
	v := sampleVehicle()

	out, err := c.ListingSubmitted(v, time.Now())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, domain.ChannelAdminPush, out[0].Channel)
	var push AdminPush
	require.NoError(t, json.Unmarshal(out[0].Payload, &push))
	assert.Equal(t, v.ID.Hex(), push.VehicleID)
	assert.Equal(t, "Renault", push.Vehicle.Brand)
	assert.NotEmpty(t, push.Message)

	assert.Equal(t, domain.ChannelEmail, out[1].Channel)
	assert.Equal(t, "admin@1auto.market", out[1].Recipient)
	assert.Contains(t, out[1].Body, "Renault Duster 2021")
}

func TestListingSubmittedWithoutAdminAddress(t *testing.T) {
	out, err := Composer{}.ListingSubmitted(sampleVehicle(), time.Now())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, domain.ChannelAdminPush, out[0].Channel)
}

func TestStatusChangedRules(t *testing.T) {
	c := Composer{BaseURL: "https://1auto.market"}
	seller := &models.User{Telegram: &models.TelegramLink{ChatID: 99}}

	v := sampleVehicle()
	v.Status = domain.StatusApproved
	out, err := c.StatusChanged(v, seller)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, domain.EventListingApproved, out[0].Event)
	assert.Equal(t, "luis@x.com", out[0].Recipient)
	assert.Equal(t, domain.ChannelTelegram, out[1].Channel)
	assert.Equal(t, "99", out[1].Recipient)

	v.Status = domain.StatusRejected
	v.RejectionReason = "Fotos <borrosas>"
	out, err = c.StatusChanged(v, nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Contains(t, out[0].Body, "Fotos &lt;borrosas&gt;")

	v.RejectionReason = ""
	out, err = c.StatusChanged(v, seller)
	require.NoError(t, err)
	assert.Empty(t, out)

	v.Status = domain.StatusUnderReview
	out, err = c.StatusChanged(v, seller)
	require.NoError(t, err)
	assert.Empty(t, out)
}
