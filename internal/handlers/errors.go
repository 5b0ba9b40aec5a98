package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/logging"
	"github.com/1auto-market/vehiclestore-backend/internal/middleware"
	"github.com/1auto-market/vehiclestore-backend/internal/services/payment"
	"github.com/1auto-market/vehiclestore-backend/internal/storage"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func principal(c *gin.Context) domain.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}

// bindJSON decodes the body into dst and answers 400 on malformed JSON.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, domain.FieldError("body", "must be a valid JSON object"))
		return false
	}
	return true
}

// respondError maps service errors to status codes and the response envelope.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusBadRequest, utils.ValidationErrorResponse(verr.Fields))
		return
	}

	status, message := http.StatusInternalServerError, "Internal server error"
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		status, message = http.StatusBadRequest, "Invalid id format"
	case errors.Is(err, storage.ErrUnsupportedType):
		status, message = http.StatusBadRequest, storage.ErrUnsupportedType.Error()
	case errors.Is(err, payment.ErrInvalidSignature):
		status, message = http.StatusBadRequest, "Invalid signature"
	case errors.Is(err, domain.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrUnauthorized):
		status, message = http.StatusUnauthorized, "Authentication required"
	case errors.Is(err, domain.ErrForbidden):
		status, message = http.StatusForbidden, domain.MsgForbidden
	case errors.Is(err, domain.ErrNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		status, message = http.StatusConflict, "Email already registered"
	case errors.Is(err, domain.ErrConflict):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrUnavailable):
		status, message = http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, message = http.StatusGatewayTimeout, "Request timed out"
	default:
		var uerr *domain.UpstreamError
		if errors.As(err, &uerr) && uerr.Service != "mongodb" && uerr.Service != "memory" {
			status, message = http.StatusBadGateway, "Upstream service error"
		}
	}

	if status >= http.StatusInternalServerError {
		logging.FromContext(c).WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
	}
	c.JSON(status, utils.ErrorResponse(message))
}
