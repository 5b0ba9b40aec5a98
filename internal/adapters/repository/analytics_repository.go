package repository

import (
	"context"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const topCategoryLimit = 5

type MongoAnalyticsRepository struct {
	DB *mongo.Database
}

func NewAnalyticsRepository(db *mongo.Database) AnalyticsRepository {
	return &MongoAnalyticsRepository{DB: db}
}

func (r *MongoAnalyticsRepository) Stats(ctx context.Context) (models.PlatformStats, error) {
	stats := models.PlatformStats{
		VehiclesByStatus: map[string]int64{},
		TopCategories:    []models.CategoryCount{},
	}
	for _, s := range domain.AllStatuses {
		stats.VehiclesByStatus[string(s)] = 0
	}

	vehicles := r.DB.Collection(database.Vehicles)

	// Per status counts, views and approved price
	cursor, err := vehicles.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":      "$status",
			"count":    bson.M{"$sum": 1},
			"views":    bson.M{"$sum": "$views"},
			"avgPrice": bson.M{"$avg": "$price"},
		}}},
	})
	if err != nil {
		return stats, dbError("aggregate vehicles", err)
	}
	var byStatus []struct {
		Status   string  `bson:"_id"`
		Count    int64   `bson:"count"`
		Views    int64   `bson:"views"`
		AvgPrice float64 `bson:"avgPrice"`
	}
	if err := cursor.All(ctx, &byStatus); err != nil {
		return stats, dbError("decode vehicle stats", err)
	}
	for _, row := range byStatus {
		stats.VehiclesByStatus[row.Status] = row.Count
		stats.TotalVehicles += row.Count
		stats.TotalViews += row.Views
		if row.Status == string(domain.StatusApproved) {
			stats.AverageApprovedPrice = row.AvgPrice
		}
	}

	// Top categories among approved listings
	cursor, err = vehicles.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": domain.StatusApproved}}},
		{{Key: "$group", Value: bson.M{"_id": "$category", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: topCategoryLimit}},
	})
	if err != nil {
		return stats, dbError("aggregate categories", err)
	}
	if err := cursor.All(ctx, &stats.TopCategories); err != nil {
		return stats, dbError("decode categories", err)
	}

	users := r.DB.Collection(database.Users)
	if stats.TotalUsers, err = users.CountDocuments(ctx, bson.M{}); err != nil {
		return stats, dbError("count users", err)
	}
	if stats.TotalAdmins, err = users.CountDocuments(ctx, bson.M{"role": domain.RoleAdmin}); err != nil {
		return stats, dbError("count admins", err)
	}
	if stats.TotalRatings, err = r.DB.Collection(database.Ratings).CountDocuments(ctx, bson.M{}); err != nil {
		return stats, dbError("count ratings", err)
	}
	return stats, nil
}
