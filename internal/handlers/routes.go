package handlers

import (
	"context"
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/middleware"
	"github.com/1auto-market/vehiclestore-backend/internal/services/assistant"
	"github.com/1auto-market/vehiclestore-backend/internal/services/listing"
	"github.com/1auto-market/vehiclestore-backend/internal/services/payment"
	"github.com/1auto-market/vehiclestore-backend/internal/services/rating"
	"github.com/1auto-market/vehiclestore-backend/internal/services/user"
	"github.com/1auto-market/vehiclestore-backend/internal/socket"
	"github.com/1auto-market/vehiclestore-backend/internal/storage"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Deps is everything the HTTP layer talks to.
type Deps struct {
	Listings   listing.Service
	Ratings    rating.Service
	Users      user.Service
	Assistant  assistant.Service
	Payments   payment.Service
	Favorites  repository.FavoriteRepository
	Categories repository.CategoryRepository
	Analytics  repository.AnalyticsRepository
	Storage    storage.MediaStorage
	Hub        *socket.Hub

	AllowedOrigins []string
	// Ping reports database reachability for /health.
	Ping func(ctx context.Context) error
}

func SetupRoutes(router *gin.Engine, deps Deps) {
	logrus.Info("Setting up routes...")

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Server is running!",
			"status":  "ok",
		})
	})
	router.GET("/health", health(deps.Ping))

	authHandler := NewAuthHandler(deps.Users)
	vehicleHandler := NewVehicleHandler(deps.Listings, deps.Assistant, deps.Storage)
	ratingHandler := NewRatingHandler(deps.Ratings)
	favoriteHandler := NewFavoriteHandler(deps.Favorites, deps.Listings)
	categoryHandler := NewCategoryHandler(deps.Categories)
	uploadHandler := NewUploadHandler(deps.Storage)
	paymentHandler := NewPaymentHandler(deps.Payments)
	adminHandler := NewAdminHandler(deps.Listings, deps.Users, deps.Analytics)
	roles := currentRoles(deps.Users)
	wsHandler := NewWebSocketHandler(deps.Hub, deps.AllowedOrigins, roles)

	api := router.Group("/api")

	// Public Routes
	api.POST("/register", authHandler.Register)
	api.POST("/login", authHandler.Login)
	api.POST("/post-ad/validate", vehicleHandler.ValidateStep)
	api.GET("/categories", categoryHandler.ListCategories)
	api.POST("/payments/webhook", paymentHandler.HandleWebhook)

	vehicles := api.Group("/vehicles")
	{
		vehicles.GET("", vehicleHandler.Browse)
		vehicles.GET("/:id", vehicleHandler.GetVehicle)
		vehicles.POST("/:id/views", vehicleHandler.RecordView)
		vehicles.POST("/:id/rate", middleware.AuthMiddleware(), ratingHandler.Rate)
		vehicles.GET("/:id/rating", middleware.AuthMiddleware(), ratingHandler.Summary)
	}

	// Protected Routes
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/profile", authHandler.Profile)
		protected.PUT("/profile", authHandler.UpdateProfile)
		protected.PUT("/profile/telegram", authHandler.LinkTelegram)
		protected.DELETE("/profile/telegram", authHandler.UnlinkTelegram)

		postAd := protected.Group("/post-ad")
		{
			postAd.POST("", vehicleHandler.PostAd)
			postAd.POST("/description", vehicleHandler.Describe)
			postAd.GET("", vehicleHandler.GetAd)
			postAd.PUT("", vehicleHandler.UpdateAd)
			postAd.DELETE("", vehicleHandler.DeleteAd)
		}
		protected.GET("/my-ads", vehicleHandler.MyAds)

		// Media Routes
		protected.POST("/upload", uploadHandler.UploadImage)

		favorites := protected.Group("/favorites")
		{
			favorites.GET("", favoriteHandler.GetFavorites)
			favorites.POST("", favoriteHandler.AddFavorite)
			favorites.DELETE("/:id", favoriteHandler.RemoveFavorite)
		}

		protected.POST("/payments/listing-fee", paymentHandler.CreateListingFee)
	}

	// The websocket authenticates through its query string.
	api.GET("/admin/ws", wsHandler.ServeWs)

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(middleware.OptionalAuth(), middleware.CurrentRole(roles), middleware.RoleMiddleware(domain.RoleAdmin))
	{
		admin.GET("/vehicles", adminHandler.ListVehicles)
		admin.GET("/vehicles/:id", adminHandler.GetVehicle)
		admin.PATCH("/vehicles/:id", adminHandler.UpdateVehicleStatus)
		admin.DELETE("/vehicles/:id", adminHandler.DeleteVehicle)

		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id", adminHandler.UpdateUserRole)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)

		admin.GET("/analytics", adminHandler.Stats)
		admin.POST("/categories", categoryHandler.CreateCategory)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("Route not found"))
	})
}

// currentRoles reads roles from the users collection instead of trusting the token.
func currentRoles(users user.Service) middleware.RoleLookup {
	if users == nil {
		return nil
	}
	return func(ctx context.Context, id primitive.ObjectID) (string, error) {
		u, err := users.Profile(ctx, domain.Principal{UserID: id})
		if err != nil {
			return "", err
		}
		return u.Role, nil
	}
}

func health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			ctx, cancel := requestContext(c)
			defer cancel()
			if err := ping(ctx); err != nil {
				logrus.WithError(err).Warn("Health check failed")
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"database": "unreachable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"service":  "vehiclestore-backend",
			"database": "ok",
		})
	}
}
