package handlers

import (
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/services/listing"
	"github.com/1auto-market/vehiclestore-backend/internal/services/user"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the moderation panel. Every route sits behind
// RoleMiddleware("admin").
type AdminHandler struct {
	Listings  listing.Service
	Users     user.Service
	Analytics repository.AnalyticsRepository
}

func NewAdminHandler(listings listing.Service, users user.Service, analytics repository.AnalyticsRepository) *AdminHandler {
	return &AdminHandler{Listings: listings, Users: users, Analytics: analytics}
}

func (h *AdminHandler) ListVehicles(c *gin.Context) {
	q, err := parseVehicleQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Listings.ListAll(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicles fetched successfully", page))
}

func (h *AdminHandler) GetVehicle(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Listings.Get(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle fetched successfully", v))
}

func (h *AdminHandler) UpdateVehicleStatus(c *gin.Context) {
	var input models.StatusUpdateInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Listings.UpdateStatus(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle status updated", v))
}

func (h *AdminHandler) DeleteVehicle(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Listings.Delete(ctx, principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle deleted successfully", nil))
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	errs := queryErrors{}
	page, limit := intParam(c, errs, "page"), intParam(c, errs, "limit")
	if err := errs.err(); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := h.Users.List(ctx, principal(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Users fetched successfully", users))
}

func (h *AdminHandler) UpdateUserRole(c *gin.Context) {
	var input models.RoleUpdateInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.UpdateRole(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("User role updated", u))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Users.Delete(ctx, principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("User deleted successfully", nil))
}

func (h *AdminHandler) Stats(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	stats, err := h.Analytics.Stats(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Analytics fetched successfully", stats))
}
