package repository

import (
	"context"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoFavoriteRepository struct {
	DB *mongo.Database
}

func NewFavoriteRepository(db *mongo.Database) FavoriteRepository {
	return &MongoFavoriteRepository{DB: db}
}

func (r *MongoFavoriteRepository) Add(ctx context.Context, userID, vehicleID primitive.ObjectID) error {
	collection := r.DB.Collection(database.Favorites)
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$addToSet": bson.M{"vehicleIds": vehicleID},
		"$setOnInsert": bson.M{
			"userId":    userID,
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)

	if _, err := collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return dbError("add favorite", err)
	}
	return nil
}

func (r *MongoFavoriteRepository) Remove(ctx context.Context, userID, vehicleID primitive.ObjectID) error {
	collection := r.DB.Collection(database.Favorites)
	filter := bson.M{"userId": userID}
	update := bson.M{
		"$pull": bson.M{"vehicleIds": vehicleID},
	}

	if _, err := collection.UpdateOne(ctx, filter, update); err != nil {
		return dbError("remove favorite", err)
	}
	return nil
}

// Get returns the saved listings that are still publicly visible.
func (r *MongoFavoriteRepository) Get(ctx context.Context, userID primitive.ObjectID) (models.PopulatedFavorites, error) {
	collection := r.DB.Collection(database.Favorites)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         database.Vehicles,
			"localField":   "vehicleIds",
			"foreignField": "_id",
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"status": domain.StatusApproved}},
			},
			"as": "vehicles",
		}}},
	}

	cursor, err := collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.PopulatedFavorites{}, dbError("load favorites", err)
	}
	defer cursor.Close(ctx)

	var results []models.PopulatedFavorites
	if err := cursor.All(ctx, &results); err != nil {
		return models.PopulatedFavorites{}, dbError("decode favorites", err)
	}

	if len(results) == 0 {
		return models.PopulatedFavorites{UserID: userID, Vehicles: []models.Vehicle{}}, nil
	}
	return results[0], nil
}
