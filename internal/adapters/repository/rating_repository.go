package repository

import (
	"context"
	"errors"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRatingRepository struct {
	DB *mongo.Database
}

func NewRatingRepository(db *mongo.Database) RatingRepository {
	return &MongoRatingRepository{DB: db}
}

// Upsert writes the vehicle document first so that concurrent votes on the
// same vehicle conflict immediately and the driver retries the loser with a
// fresh snapshot.
func (r *MongoRatingRepository) Upsert(ctx context.Context, rating models.Rating) (models.RatingSummary, error) {
	vehicleColl := r.DB.Collection(database.Vehicles)
	ratingColl := r.DB.Collection(database.Ratings)

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		now := time.Now().UTC()

		// 1. Lock the approved vehicle
		res, err := vehicleColl.UpdateOne(sessCtx,
			bson.M{"_id": rating.VehicleID, "status": domain.StatusApproved},
			bson.M{"$set": bson.M{"updatedAt": now}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.NotFound("vehicle")
		}

		// 2. Upsert the vote
		_, err = ratingColl.UpdateOne(sessCtx,
			bson.M{"vehicleId": rating.VehicleID, "userId": rating.UserID},
			bson.M{
				"$set":         bson.M{"rating": rating.Rating, "updatedAt": now},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true))
		if err != nil {
			return nil, err
		}

		// 3. Recompute the aggregate from every vote
		avg, total, err := aggregateRatings(sessCtx, ratingColl, rating.VehicleID)
		if err != nil {
			return nil, err
		}
		avg = models.RoundRating(avg)

		// 4. Store it on the vehicle
		_, err = vehicleColl.UpdateOne(sessCtx, bson.M{"_id": rating.VehicleID}, bson.M{
			"$set": bson.M{
				"averageRating": avg,
				"ratingCount":   total,
				"updatedAt":     now,
			},
		})
		if err != nil {
			return nil, err
		}

		return models.RatingSummary{
			VehicleID:     rating.VehicleID,
			AverageRating: avg,
			RatingCount:   total,
			UserRating:    rating.Rating,
		}, nil
	}

	result, err := withTransaction(ctx, r.DB, callback)
	if err != nil {
		return models.RatingSummary{}, err
	}
	return result.(models.RatingSummary), nil
}

func (r *MongoRatingRepository) Get(ctx context.Context, vehicleID, userID primitive.ObjectID) (models.Rating, error) {
	var rating models.Rating
	err := r.DB.Collection(database.Ratings).
		FindOne(ctx, bson.M{"vehicleId": vehicleID, "userId": userID}).
		Decode(&rating)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Rating{}, domain.NotFound("rating")
		}
		return models.Rating{}, dbError("find rating", err)
	}
	return rating, nil
}

func aggregateRatings(ctx context.Context, coll *mongo.Collection, vehicleID primitive.ObjectID) (float64, int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"vehicleId": vehicleID}}},
		{{Key: "$group", Value: bson.M{
			"_id":       "$vehicleId",
			"avgRating": bson.M{"$avg": "$rating"},
			"total":     bson.M{"$sum": 1},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgRating float64 `bson:"avgRating"`
		Total     int     `bson:"total"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, 0, err
	}
	if len(results) == 0 {
		return 0, 0, nil
	}
	return results[0].AvgRating, results[0].Total, nil
}
