package memory

import (
	"context"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingRepository struct{ s *Store }

func (r *RatingRepository) Upsert(_ context.Context, rating models.Rating) (models.RatingSummary, error) {
	if err := r.s.lock(); err != nil {
		return models.RatingSummary{}, err
	}
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[rating.VehicleID]
	if !ok || v.Status != domain.StatusApproved {
		return models.RatingSummary{}, domain.NotFound("vehicle")
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	key := ratingKey{vehicleID: rating.VehicleID, userID: rating.UserID}
	if existing, ok := r.s.ratings[key]; ok {
		existing.Rating = rating.Rating
		existing.UpdatedAt = now
		r.s.ratings[key] = existing
	} else {
		rating.ID = primitive.NewObjectID()
		rating.CreatedAt = now
		rating.UpdatedAt = now
		r.s.ratings[key] = rating
	}

	sum, count := 0, 0
	for k, stored := range r.s.ratings {
		if k.vehicleID == rating.VehicleID {
			sum += stored.Rating
			count++
		}
	}
	avg := models.RoundRating(float64(sum) / float64(count))

	v.AverageRating = avg
	v.RatingCount = count
	v.UpdatedAt = now
	r.s.vehicles[v.ID] = v

	return models.RatingSummary{
		VehicleID:     rating.VehicleID,
		AverageRating: avg,
		RatingCount:   count,
		UserRating:    rating.Rating,
	}, nil
}

func (r *RatingRepository) Get(_ context.Context, vehicleID, userID primitive.ObjectID) (models.Rating, error) {
	if err := r.s.lock(); err != nil {
		return models.Rating{}, err
	}
	defer r.s.mu.Unlock()

	rating, ok := r.s.ratings[ratingKey{vehicleID: vehicleID, userID: userID}]
	if !ok {
		return models.Rating{}, domain.NotFound("rating")
	}
	return rating, nil
}
