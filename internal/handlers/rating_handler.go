package handlers

import (
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/services/rating"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

type RatingHandler struct {
	Ratings rating.Service
}

func NewRatingHandler(ratings rating.Service) *RatingHandler {
	return &RatingHandler{Ratings: ratings}
}

func (h *RatingHandler) Rate(c *gin.Context) {
	var input models.RatingInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := h.Ratings.Rate(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Rating saved successfully", summary))
}

func (h *RatingHandler) Summary(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	summary, err := h.Ratings.Summary(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Rating fetched successfully", summary))
}
