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

type MongoUserRepository struct {
	DB *mongo.Database
}

func NewUserRepository(db *mongo.Database) UserRepository {
	return &MongoUserRepository{DB: db}
}

func (r *MongoUserRepository) collection() *mongo.Collection {
	return r.DB.Collection(database.Users)
}

func (r *MongoUserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	count, err := r.collection().CountDocuments(ctx, bson.M{"email": user.Email})
	if err != nil {
		return models.User{}, dbError("check email", err)
	}
	if count > 0 {
		return models.User{}, domain.ErrEmailTaken
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, err := r.collection().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return models.User{}, domain.ErrEmailTaken
		}
		return models.User{}, dbError("insert user", err)
	}
	return user, nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	if err := r.collection().FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, domain.NotFound("user")
		}
		return models.User{}, dbError("find user", err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) List(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	skip, lim := pageOpts(page, limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(skip).
		SetLimit(lim).
		SetProjection(bson.M{"password": 0})

	cursor, err := r.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, dbError("list users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, dbError("decode users", err)
	}
	total, err := r.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, dbError("count users", err)
	}
	return users, total, nil
}

func (r *MongoUserRepository) update(ctx context.Context, id primitive.ObjectID, update bson.M) (models.User, error) {
	var user models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.collection().FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, domain.NotFound("user")
		}
		return models.User{}, dbError("update user", err)
	}
	return user, nil
}

func (r *MongoUserRepository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (models.User, error) {
	return r.update(ctx, id, bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now().UTC()}})
}

func (r *MongoUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, in models.ProfileUpdate) (models.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Phone != nil {
		set["phone"] = *in.Phone
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}
	return r.update(ctx, id, bson.M{"$set": set})
}

func (r *MongoUserRepository) SetTelegram(ctx context.Context, id primitive.ObjectID, link *models.TelegramLink) (models.User, error) {
	now := time.Now().UTC()
	if link == nil {
		return r.update(ctx, id, bson.M{
			"$set":   bson.M{"updatedAt": now},
			"$unset": bson.M{"telegram": ""},
		})
	}
	return r.update(ctx, id, bson.M{"$set": bson.M{"telegram": link, "updatedAt": now}})
}

func (r *MongoUserRepository) DeleteCascade(ctx context.Context, id primitive.ObjectID) error {
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.collection().DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, domain.NotFound("user")
		}

		// 1. Collect the user's listings
		vehicles := r.DB.Collection(database.Vehicles)
		cursor, err := vehicles.Find(sessCtx, bson.M{"sellerId": id}, options.Find().SetProjection(bson.M{"_id": 1}))
		if err != nil {
			return nil, err
		}
		var owned []struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.All(sessCtx, &owned); err != nil {
			return nil, err
		}
		ids := make([]primitive.ObjectID, 0, len(owned))
		for _, o := range owned {
			ids = append(ids, o.ID)
		}

		// 2. Remove them and everything pointing at them
		if _, err := vehicles.DeleteMany(sessCtx, bson.M{"sellerId": id}); err != nil {
			return nil, err
		}
		favorites := r.DB.Collection(database.Favorites)
		if len(ids) > 0 {
			if _, err := r.DB.Collection(database.Ratings).DeleteMany(sessCtx, bson.M{"vehicleId": bson.M{"$in": ids}}); err != nil {
				return nil, err
			}
			if _, err := favorites.UpdateMany(sessCtx,
				bson.M{"vehicleIds": bson.M{"$in": ids}},
				bson.M{"$pull": bson.M{"vehicleIds": bson.M{"$in": ids}}}); err != nil {
				return nil, err
			}
		}

		// 3. Drop the user's own saved list
		_, err = favorites.DeleteOne(sessCtx, bson.M{"userId": id})
		return nil, err
	}

	_, err := withTransaction(ctx, r.DB, callback)
	return err
}
