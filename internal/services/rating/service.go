package rating

import (
	"context"
	"errors"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/cache"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/validation"
)

type Service interface {
	// Rate stores or replaces the caller's vote and returns the new aggregate.
	Rate(ctx context.Context, p domain.Principal, vehicleID string, in models.RatingInput) (models.RatingSummary, error)
	Summary(ctx context.Context, p domain.Principal, vehicleID string) (models.RatingSummary, error)
}

type service struct {
	ratings  repository.RatingRepository
	vehicles repository.VehicleRepository
	cache    *cache.VehicleCache
}

func NewService(ratings repository.RatingRepository, vehicles repository.VehicleRepository, c *cache.VehicleCache) Service {
	return &service{ratings: ratings, vehicles: vehicles, cache: c}
}

func (s *service) Rate(ctx context.Context, p domain.Principal, vehicleID string, in models.RatingInput) (models.RatingSummary, error) {
	if p.UserID.IsZero() {
		return models.RatingSummary{}, domain.ErrUnauthorized
	}
	if err := validation.Struct(&in); err != nil {
		return models.RatingSummary{}, err
	}
	oid, err := domain.ParseID("vehicle", vehicleID)
	if err != nil {
		return models.RatingSummary{}, err
	}

	summary, err := s.ratings.Upsert(ctx, models.Rating{
		VehicleID: oid,
		UserID:    p.UserID,
		Rating:    in.Rating,
	})
	if err != nil {
		return models.RatingSummary{}, err
	}
	s.cache.Invalidate(oid.Hex())
	return summary, nil
}

func (s *service) Summary(ctx context.Context, p domain.Principal, vehicleID string) (models.RatingSummary, error) {
	oid, err := domain.ParseID("vehicle", vehicleID)
	if err != nil {
		return models.RatingSummary{}, err
	}
	vehicle, err := s.vehicles.GetByID(ctx, oid)
	if err != nil {
		return models.RatingSummary{}, err
	}
	if vehicle.Status != domain.StatusApproved && !p.CanManage(vehicle.SellerID) {
		return models.RatingSummary{}, domain.NotFound("vehicle")
	}

	summary := models.RatingSummary{
		VehicleID:     oid,
		AverageRating: vehicle.AverageRating,
		RatingCount:   vehicle.RatingCount,
	}
	if p.UserID.IsZero() {
		return summary, nil
	}
	own, err := s.ratings.Get(ctx, oid, p.UserID)
	switch {
	case err == nil:
		summary.UserRating = own.Rating
	case !errors.Is(err, domain.ErrNotFound):
		return models.RatingSummary{}, err
	}
	return summary, nil
}
