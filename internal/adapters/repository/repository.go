package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/mongodb"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type VehicleRepository interface {
	// Create stores the listing and its outbox notifications atomically.
	Create(ctx context.Context, vehicle models.Vehicle, outbox []domain.Notification) (models.Vehicle, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Vehicle, error)
	List(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, int64, error)

	// UpdateDetails replaces the seller controlled fields if the listing is still
	// in the expected status. A non-nil change also moves the listing to change.To.
	UpdateDetails(ctx context.Context, id primitive.ObjectID, expected domain.ListingStatus, details models.VehicleDetails, change *models.StatusChange) (models.Vehicle, error)

	// UpdateStatus applies change if the listing is still in change.From and
	// stores the outbox notifications in the same transaction.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange, outbox []domain.Notification) (models.Vehicle, error)

	// Delete removes the listing together with its ratings and favorites.
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) (int64, error)
	SetListingFee(ctx context.Context, id primitive.ObjectID, fee models.ListingFee) error
	MarkListingFeePaid(ctx context.Context, paymentIntentID string, at time.Time) (models.Vehicle, error)
}

type RatingRepository interface {
	// Upsert stores the vote and recomputes the vehicle aggregate in one
	// transaction. Only approved vehicles can be rated.
	Upsert(ctx context.Context, rating models.Rating) (models.RatingSummary, error)
	Get(ctx context.Context, vehicleID, userID primitive.ObjectID) (models.Rating, error)
}

type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context, page, limit int) ([]models.User, int64, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (models.User, error)
	SetTelegram(ctx context.Context, id primitive.ObjectID, link *models.TelegramLink) (models.User, error)

	// DeleteCascade removes the user, their listings, the ratings of those
	// listings and every favorites reference to them.
	DeleteCascade(ctx context.Context, id primitive.ObjectID) error
}

type FavoriteRepository interface {
	Add(ctx context.Context, userID, vehicleID primitive.ObjectID) error
	Remove(ctx context.Context, userID, vehicleID primitive.ObjectID) error
	Get(ctx context.Context, userID primitive.ObjectID) (models.PopulatedFavorites, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, category models.Category) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type AnalyticsRepository interface {
	Stats(ctx context.Context) (models.PlatformStats, error)
}

// Repositories groups every store the services need.
type Repositories struct {
	Vehicles      VehicleRepository
	Ratings       RatingRepository
	Users         UserRepository
	Favorites     FavoriteRepository
	Categories    CategoryRepository
	Analytics     AnalyticsRepository
	Notifications domain.NotificationRepository
}

func NewMongoRepositories(db *mongo.Database) Repositories {
	return Repositories{
		Vehicles:      NewVehicleRepository(db),
		Ratings:       NewRatingRepository(db),
		Users:         NewUserRepository(db),
		Favorites:     NewFavoriteRepository(db),
		Categories:    NewCategoryRepository(db),
		Analytics:     NewAnalyticsRepository(db),
		Notifications: mongodb.NewNotificationRepository(db),
	}
}

func withTransaction(ctx context.Context, db *mongo.Database, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := db.Client().StartSession()
	if err != nil {
		return nil, dbError("start session", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, fn)
	if err != nil {
		if isDomainError(err) {
			return nil, err
		}
		return nil, dbError("transaction", err)
	}
	return result, nil
}

func dbError(op string, err error) error {
	return &domain.UpstreamError{Service: "mongodb", Err: fmt.Errorf("%s: %w", op, err)}
}

func isDomainError(err error) bool {
	var verr *domain.ValidationError
	var uerr *domain.UpstreamError
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrConflict) ||
		errors.As(err, &verr) ||
		errors.As(err, &uerr)
}

func pageOpts(page, limit int) (int64, int64) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = models.DefaultPageSize
	}
	if limit > models.MaxPageSize {
		limit = models.MaxPageSize
	}
	return int64((page - 1) * limit), int64(limit)
}
