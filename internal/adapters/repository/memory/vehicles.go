package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/mongodb"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleRepository struct{ s *Store }

func (r *VehicleRepository) Create(_ context.Context, vehicle models.Vehicle, outbox []domain.Notification) (models.Vehicle, error) {
	if err := r.s.lock(); err != nil {
		return models.Vehicle{}, err
	}
	defer r.s.mu.Unlock()

	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}
	vehicle = truncate(vehicle)
	r.s.vehicles[vehicle.ID] = vehicle.Clone()
	r.s.enqueueLocked(outbox)
	return vehicle.Clone(), nil
}

func (r *VehicleRepository) GetByID(_ context.Context, id primitive.ObjectID) (models.Vehicle, error) {
	if err := r.s.lock(); err != nil {
		return models.Vehicle{}, err
	}
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return models.Vehicle{}, domain.NotFound("vehicle")
	}
	return v.Clone(), nil
}

func (r *VehicleRepository) List(_ context.Context, q models.VehicleQuery) ([]models.Vehicle, int64, error) {
	if err := r.s.lock(); err != nil {
		return nil, 0, err
	}
	defer r.s.mu.Unlock()

	q.Normalize()
	matched := []models.Vehicle{}
	for _, v := range r.s.vehicles {
		if matches(v, q) {
			matched = append(matched, v.Clone())
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j], q.Sort) })

	total := int64(len(matched))
	start := int(q.Skip())
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *VehicleRepository) UpdateDetails(_ context.Context, id primitive.ObjectID, expected domain.ListingStatus, details models.VehicleDetails, change *models.StatusChange) (models.Vehicle, error) {
	if err := r.s.lock(); err != nil {
		return models.Vehicle{}, err
	}
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return models.Vehicle{}, domain.NotFound("vehicle")
	}
	if v.Status != expected {
		return models.Vehicle{}, domain.ErrConflict
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	v.VehicleDetails = details
	v.UpdatedAt = now
	if change != nil {
		change.ChangedAt = now
		v.Status = change.To
		v.RejectionReason = ""
		v.StatusHistory = append(v.StatusHistory, *change)
	}
	r.s.vehicles[id] = v.Clone()
	return v.Clone(), nil
}

func (r *VehicleRepository) UpdateStatus(_ context.Context, id primitive.ObjectID, change models.StatusChange, outbox []domain.Notification) (models.Vehicle, error) {
	if err := r.s.lock(); err != nil {
		return models.Vehicle{}, err
	}
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return models.Vehicle{}, domain.NotFound("vehicle")
	}
	if v.Status != change.From {
		return models.Vehicle{}, domain.ErrConflict
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	change.ChangedAt = now
	v.Status = change.To
	v.RejectionReason = ""
	if change.To == domain.StatusRejected {
		v.RejectionReason = change.Reason
	}
	v.StatusHistory = append(v.StatusHistory, change)
	v.UpdatedAt = now
	r.s.vehicles[id] = v.Clone()
	r.s.enqueueLocked(outbox)
	return v.Clone(), nil
}

func (r *VehicleRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	if _, ok := r.s.vehicles[id]; !ok {
		return domain.NotFound("vehicle")
	}
	r.s.deleteVehiclesLocked(map[primitive.ObjectID]bool{id: true})
	return nil
}

func (r *VehicleRepository) IncrementViews(_ context.Context, id primitive.ObjectID) (int64, error) {
	if err := r.s.lock(); err != nil {
		return 0, err
	}
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[id]
	if !ok || v.Status != domain.StatusApproved {
		return 0, domain.NotFound("vehicle")
	}
	v.Views++
	r.s.vehicles[id] = v
	return v.Views, nil
}

func (r *VehicleRepository) SetListingFee(_ context.Context, id primitive.ObjectID, fee models.ListingFee) error {
	if err := r.s.lock(); err != nil {
		return err
	}
	defer r.s.mu.Unlock()

	v, ok := r.s.vehicles[id]
	if !ok {
		return domain.NotFound("vehicle")
	}
	v.ListingFee = &fee
	v.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.s.vehicles[id] = v.Clone()
	return nil
}

func (r *VehicleRepository) MarkListingFeePaid(_ context.Context, paymentIntentID string, at time.Time) (models.Vehicle, error) {
	if err := r.s.lock(); err != nil {
		return models.Vehicle{}, err
	}
	defer r.s.mu.Unlock()

	for id, v := range r.s.vehicles {
		if v.ListingFee == nil || v.ListingFee.PaymentIntentID != paymentIntentID {
			continue
		}
		v = v.Clone()
		paidAt := at
		v.ListingFee.Status = models.ListingFeePaid
		v.ListingFee.PaidAt = &paidAt
		if v.ReferenceNumber == "" {
			v.ReferenceNumber = paymentIntentID
		}
		v.UpdatedAt = at
		r.s.vehicles[id] = v.Clone()
		return v, nil
	}
	return models.Vehicle{}, domain.NotFound("listing fee")
}

func (s *Store) enqueueLocked(outbox []domain.Notification) {
	now := time.Now().UTC()
	for _, n := range outbox {
		s.notifications = append(s.notifications, mongodb.PrepareNotification(n, now))
	}
}

// deleteVehiclesLocked removes listings with their ratings and favorites.
func (s *Store) deleteVehiclesLocked(ids map[primitive.ObjectID]bool) {
	for id := range ids {
		delete(s.vehicles, id)
	}
	for k := range s.ratings {
		if ids[k.vehicleID] {
			delete(s.ratings, k)
		}
	}
	for userID, fav := range s.favorites {
		kept := fav.VehicleIDs[:0:0]
		for _, vid := range fav.VehicleIDs {
			if !ids[vid] {
				kept = append(kept, vid)
			}
		}
		fav.VehicleIDs = kept
		s.favorites[userID] = fav
	}
}

// truncate mimics BSON date precision.
func truncate(v models.Vehicle) models.Vehicle {
	v.CreatedAt = v.CreatedAt.Truncate(time.Millisecond)
	v.UpdatedAt = v.UpdatedAt.Truncate(time.Millisecond)
	v.PostedDate = v.PostedDate.Truncate(time.Millisecond)
	return v
}

func matches(v models.Vehicle, q models.VehicleQuery) bool {
	if len(q.Statuses) > 0 {
		found := false
		for _, s := range q.Statuses {
			if v.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if !q.SellerID.IsZero() && v.SellerID != q.SellerID {
		return false
	}
	exact := [][2]string{
		{q.Category, v.Category},
		{q.FuelType, v.FuelType},
		{q.Transmission, v.Transmission},
		{q.Condition, v.Condition},
	}
	for _, pair := range exact {
		if pair[0] != "" && pair[0] != pair[1] {
			return false
		}
	}
	if q.Brand != "" && !strings.EqualFold(q.Brand, v.Brand) {
		return false
	}
	if q.Model != "" && !strings.EqualFold(q.Model, v.Model) {
		return false
	}
	if q.Location != "" && !containsFold(v.Location, q.Location) {
		return false
	}
	if q.MinPrice > 0 && v.Price < q.MinPrice {
		return false
	}
	if q.MaxPrice > 0 && v.Price > q.MaxPrice {
		return false
	}
	if q.MinYear > 0 && v.Year < q.MinYear {
		return false
	}
	if q.MaxYear > 0 && v.Year > q.MaxYear {
		return false
	}
	if q.Search != "" {
		if !containsFold(v.Brand, q.Search) && !containsFold(v.Model, q.Search) &&
			!containsFold(v.Description, q.Search) && !containsFold(v.Category, q.Search) {
			return false
		}
	}
	return true
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func less(a, b models.Vehicle, order string) bool {
	switch order {
	case models.SortPriceAsc:
		if a.Price != b.Price {
			return a.Price < b.Price
		}
	case models.SortPriceDesc:
		if a.Price != b.Price {
			return a.Price > b.Price
		}
	case models.SortYearDesc:
		if a.Year != b.Year {
			return a.Year > b.Year
		}
	case models.SortRating:
		if a.AverageRating != b.AverageRating {
			return a.AverageRating > b.AverageRating
		}
		if a.RatingCount != b.RatingCount {
			return a.RatingCount > b.RatingCount
		}
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}
