package handlers

import (
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/services/user"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Users user.Service
}

func NewAuthHandler(users user.Service) *AuthHandler {
	return &AuthHandler{Users: users}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Users.Register(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("User registered successfully", res))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.Users.Login(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Login successful", res))
}

func (h *AuthHandler) Profile(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.Profile(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Profile fetched successfully", u))
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var input models.ProfileUpdate
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.UpdateProfile(ctx, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Profile updated successfully", u))
}

func (h *AuthHandler) LinkTelegram(c *gin.Context) {
	var input models.TelegramLink
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.LinkTelegram(ctx, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Telegram linked successfully", u))
}

func (h *AuthHandler) UnlinkTelegram(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	u, err := h.Users.UnlinkTelegram(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Telegram unlinked successfully", u))
}
