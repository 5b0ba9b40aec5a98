package handlers

import (
	"io"
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/services/payment"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

const maxWebhookBytes = int64(65536)

type PaymentHandler struct {
	Payments payment.Service
}

func NewPaymentHandler(payments payment.Service) *PaymentHandler {
	return &PaymentHandler{Payments: payments}
}

func (h *PaymentHandler) CreateListingFee(c *gin.Context) {
	var req struct {
		VehicleID string `json:"vehicleId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	intent, err := h.Payments.CreateListingFee(ctx, principal(c), req.VehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent created", intent))
}

// HandleWebhook processes asynchronous events from Stripe.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Error reading request body"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Payments.HandleWebhook(ctx, payload, c.GetHeader("Stripe-Signature")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
