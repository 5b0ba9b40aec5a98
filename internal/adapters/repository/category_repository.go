package repository

import (
	"context"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCategoryRepository struct {
	DB *mongo.Database
}

func NewCategoryRepository(db *mongo.Database) CategoryRepository {
	return &MongoCategoryRepository{DB: db}
}

func (r *MongoCategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	if _, err := r.DB.Collection(database.Categories).InsertOne(ctx, category); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.Category{}, domain.ErrConflict
		}
		return models.Category{}, dbError("insert category", err)
	}
	return category, nil
}

func (r *MongoCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.DB.Collection(database.Categories).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, dbError("list categories", err)
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, dbError("decode categories", err)
	}
	return categories, nil
}
