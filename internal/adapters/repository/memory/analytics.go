package memory

import (
	"context"
	"sort"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
)

type AnalyticsRepository struct{ s *Store }

func (r *AnalyticsRepository) Stats(_ context.Context) (models.PlatformStats, error) {
	if err := r.s.lock(); err != nil {
		return models.PlatformStats{}, err
	}
	defer r.s.mu.Unlock()

	stats := models.PlatformStats{
		VehiclesByStatus: map[string]int64{},
		TopCategories:    []models.CategoryCount{},
	}
	for _, s := range domain.AllStatuses {
		stats.VehiclesByStatus[string(s)] = 0
	}

	var priceSum float64
	var approved int64
	categories := map[string]int64{}
	for _, v := range r.s.vehicles {
		stats.VehiclesByStatus[string(v.Status)]++
		stats.TotalVehicles++
		stats.TotalViews += v.Views
		if v.Status == domain.StatusApproved {
			approved++
			priceSum += v.Price
			categories[v.Category]++
		}
	}
	if approved > 0 {
		stats.AverageApprovedPrice = priceSum / float64(approved)
	}
	for name, count := range categories {
		stats.TopCategories = append(stats.TopCategories, models.CategoryCount{Category: name, Count: count})
	}
	sort.Slice(stats.TopCategories, func(i, j int) bool {
		a, b := stats.TopCategories[i], stats.TopCategories[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Category < b.Category
	})
	if len(stats.TopCategories) > 5 {
		stats.TopCategories = stats.TopCategories[:5]
	}

	for _, u := range r.s.users {
		stats.TotalUsers++
		if u.Role == domain.RoleAdmin {
			stats.TotalAdmins++
		}
	}
	stats.TotalRatings = int64(len(r.s.ratings))
	return stats, nil
}
