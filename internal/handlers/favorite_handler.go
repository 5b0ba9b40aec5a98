package handlers

import (
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/services/listing"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

type FavoriteHandler struct {
	Repo     repository.FavoriteRepository
	Listings listing.Service
}

func NewFavoriteHandler(repo repository.FavoriteRepository, listings listing.Service) *FavoriteHandler {
	return &FavoriteHandler{Repo: repo, Listings: listings}
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	var req struct {
		VehicleID string `json:"vehicleId"`
	}
	if !bindJSON(c, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	// Only published listings can be saved.
	vehicle, err := h.Listings.GetPublic(ctx, req.VehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Repo.Add(ctx, principal(c).UserID, vehicle.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle added to favorites", nil))
}

func (h *FavoriteHandler) RemoveFavorite(c *gin.Context) {
	vehicleID, err := domain.ParseID("vehicle", c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Repo.Remove(ctx, principal(c).UserID, vehicleID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle removed from favorites", nil))
}

func (h *FavoriteHandler) GetFavorites(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	favorites, err := h.Repo.Get(ctx, principal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	for i, v := range favorites.Vehicles {
		favorites.Vehicles[i] = v.Public()
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Favorites fetched successfully", favorites))
}
