package memory

import (
	"context"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavoriteRepository struct{ s *Store }

func (r *FavoriteRepository) Add(_ context.Context, userID, vehicleID primitive.ObjectID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	fav, ok := r.s.favorites[userID]
	if !ok {
		fav = models.Favorites{UserID: userID, CreatedAt: time.Now().UTC()}
	}
	for _, id := range fav.VehicleIDs {
		if id == vehicleID {
			return nil
		}
	}
	fav.VehicleIDs = append(append([]primitive.ObjectID(nil), fav.VehicleIDs...), vehicleID)
	r.s.favorites[userID] = fav
	return nil
}

func (r *FavoriteRepository) Remove(_ context.Context, userID, vehicleID primitive.ObjectID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	fav, ok := r.s.favorites[userID]
	if !ok {
		return nil
	}
	kept := make([]primitive.ObjectID, 0, len(fav.VehicleIDs))
	for _, id := range fav.VehicleIDs {
		if id != vehicleID {
			kept = append(kept, id)
		}
	}
	fav.VehicleIDs = kept
	r.s.favorites[userID] = fav
	return nil
}

func (r *FavoriteRepository) Get(_ context.Context, userID primitive.ObjectID) (models.PopulatedFavorites, error) {
	if err := r.s.lock(); err != nil {
		return models.PopulatedFavorites{}, err
	}
	defer r.s.mu.Unlock()

	out := models.PopulatedFavorites{UserID: userID, Vehicles: []models.Vehicle{}}
	for _, id := range r.s.favorites[userID].VehicleIDs {
		if v, ok := r.s.vehicles[id]; ok && v.Status == domain.StatusApproved {
			out.Vehicles = append(out.Vehicles, v.Clone())
		}
	}
	return out, nil
}
