package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/mongodb"
	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// optionalDetailKeys are the seller fields stored with omitempty. An edit that
// clears one of them has to unset it explicitly.
var optionalDetailKeys = []string{
	"subcategory", "engine", "doors", "seats", "weight", "loadCapacity", "vin",
	"documentation", "financing", "paymentProof", "referenceNumber",
}

type MongoVehicleRepository struct {
	DB *mongo.Database
}

func NewVehicleRepository(db *mongo.Database) VehicleRepository {
	return &MongoVehicleRepository{DB: db}
}

func (r *MongoVehicleRepository) collection() *mongo.Collection {
	return r.DB.Collection(database.Vehicles)
}

func (r *MongoVehicleRepository) Create(ctx context.Context, vehicle models.Vehicle, outbox []domain.Notification) (models.Vehicle, error) {
	if vehicle.ID.IsZero() {
		vehicle.ID = primitive.NewObjectID()
	}

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := r.collection().InsertOne(sessCtx, vehicle); err != nil {
			return nil, err
		}
		if err := mongodb.InsertNotifications(sessCtx, r.DB.Collection(database.Notifications), outbox); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if _, err := withTransaction(ctx, r.DB, callback); err != nil {
		return models.Vehicle{}, err
	}
	return vehicle, nil
}

func (r *MongoVehicleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.collection().FindOne(ctx, bson.M{"_id": id}).Decode(&vehicle); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Vehicle{}, domain.NotFound("vehicle")
		}
		return models.Vehicle{}, dbError("find vehicle", err)
	}
	return vehicle, nil
}

func (r *MongoVehicleRepository) List(ctx context.Context, q models.VehicleQuery) ([]models.Vehicle, int64, error) {
	q.Normalize()
	filter := vehicleFilter(q)
	opts := options.Find().
		SetSort(vehicleSort(q.Sort)).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection().Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, dbError("list vehicles", err)
	}
	defer cursor.Close(ctx)

	vehicles := []models.Vehicle{}
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, 0, dbError("decode vehicles", err)
	}

	total, err := r.collection().CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, dbError("count vehicles", err)
	}
	return vehicles, total, nil
}

func (r *MongoVehicleRepository) UpdateDetails(ctx context.Context, id primitive.ObjectID, expected domain.ListingStatus, details models.VehicleDetails, change *models.StatusChange) (models.Vehicle, error) {
	raw, err := bson.Marshal(details)
	if err != nil {
		return models.Vehicle{}, err
	}
	set := bson.M{}
	if err := bson.Unmarshal(raw, &set); err != nil {
		return models.Vehicle{}, err
	}
	unset := bson.M{}
	for _, key := range optionalDetailKeys {
		if _, ok := set[key]; !ok {
			unset[key] = ""
		}
	}

	now := time.Now().UTC()
	set["updatedAt"] = now
	update := bson.M{"$set": set}
	if change != nil {
		change.ChangedAt = now
		set["status"] = change.To
		unset["rejectionReason"] = ""
		update["$push"] = bson.M{"statusHistory": change}
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	var updated models.Vehicle
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.collection().FindOneAndUpdate(ctx, bson.M{"_id": id, "status": expected}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Vehicle{}, r.missReason(ctx, id)
		}
		return models.Vehicle{}, dbError("update vehicle", err)
	}
	return updated, nil
}

func (r *MongoVehicleRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, change models.StatusChange, outbox []domain.Notification) (models.Vehicle, error) {
	now := time.Now().UTC()
	change.ChangedAt = now

	set := bson.M{"status": change.To, "updatedAt": now}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": change},
	}
	if change.To == domain.StatusRejected && change.Reason != "" {
		set["rejectionReason"] = change.Reason
	} else {
		update["$unset"] = bson.M{"rejectionReason": ""}
	}

	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		var updated models.Vehicle
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err := r.collection().FindOneAndUpdate(sessCtx, bson.M{"_id": id, "status": change.From}, update, opts).Decode(&updated)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, r.missReason(sessCtx, id)
			}
			return nil, err
		}
		if err := mongodb.InsertNotifications(sessCtx, r.DB.Collection(database.Notifications), outbox); err != nil {
			return nil, err
		}
		return updated, nil
	}

	result, err := withTransaction(ctx, r.DB, callback)
	if err != nil {
		return models.Vehicle{}, err
	}
	return result.(models.Vehicle), nil
}

func (r *MongoVehicleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	callback := func(sessCtx mongo.SessionContext) (interface{}, error) {
		res, err := r.collection().DeleteOne(sessCtx, bson.M{"_id": id})
		if err != nil {
			return nil, err
		}
		if res.DeletedCount == 0 {
			return nil, domain.NotFound("vehicle")
		}
		if _, err := r.DB.Collection(database.Ratings).DeleteMany(sessCtx, bson.M{"vehicleId": id}); err != nil {
			return nil, err
		}
		_, err = r.DB.Collection(database.Favorites).UpdateMany(sessCtx,
			bson.M{"vehicleIds": id},
			bson.M{"$pull": bson.M{"vehicleIds": id}})
		return nil, err
	}

	_, err := withTransaction(ctx, r.DB, callback)
	return err
}

func (r *MongoVehicleRepository) IncrementViews(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var result struct {
		Views int64 `bson:"views"`
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"views": 1})
	err := r.collection().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": domain.StatusApproved},
		bson.M{"$inc": bson.M{"views": 1}},
		opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.NotFound("vehicle")
		}
		return 0, dbError("increment views", err)
	}
	return result.Views, nil
}

func (r *MongoVehicleRepository) SetListingFee(ctx context.Context, id primitive.ObjectID, fee models.ListingFee) error {
	res, err := r.collection().UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"listingFee": fee, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return dbError("set listing fee", err)
	}
	if res.MatchedCount == 0 {
		return domain.NotFound("vehicle")
	}
	return nil
}

func (r *MongoVehicleRepository) MarkListingFeePaid(ctx context.Context, paymentIntentID string, at time.Time) (models.Vehicle, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"listingFee.status": models.ListingFeePaid,
			"listingFee.paidAt": at,
			"referenceNumber":   bson.M{"$ifNull": bson.A{"$referenceNumber", paymentIntentID}},
			"updatedAt":         at,
		}}},
	}
	var updated models.Vehicle
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.collection().FindOneAndUpdate(ctx, bson.M{"listingFee.paymentIntentId": paymentIntentID}, update, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Vehicle{}, domain.NotFound("listing fee")
		}
		return models.Vehicle{}, dbError("mark listing fee paid", err)
	}
	return updated, nil
}

// missReason tells a missing listing apart from one whose status moved on.
func (r *MongoVehicleRepository) missReason(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection().CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return dbError("count vehicle", err)
	}
	if n == 0 {
		return domain.NotFound("vehicle")
	}
	return domain.ErrConflict
}

func vehicleFilter(q models.VehicleQuery) bson.M {
	filter := bson.M{}
	if len(q.Statuses) == 1 {
		filter["status"] = q.Statuses[0]
	} else if len(q.Statuses) > 1 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	if !q.SellerID.IsZero() {
		filter["sellerId"] = q.SellerID
	}

	exact := map[string]string{
		"category":     q.Category,
		"fuelType":     q.FuelType,
		"transmission": q.Transmission,
		"condition":    q.Condition,
	}
	for key, value := range exact {
		if value != "" {
			filter[key] = value
		}
	}
	ci := map[string]string{
		"brand": q.Brand,
		"model": q.Model,
	}
	for key, value := range ci {
		if value != "" {
			filter[key] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
		}
	}
	if q.Location != "" {
		filter["location"] = primitive.Regex{Pattern: regexp.QuoteMeta(q.Location), Options: "i"}
	}

	if q.MinPrice > 0 || q.MaxPrice > 0 {
		price := bson.M{}
		if q.MinPrice > 0 {
			price["$gte"] = q.MinPrice
		}
		if q.MaxPrice > 0 {
			price["$lte"] = q.MaxPrice
		}
		filter["price"] = price
	}
	if q.MinYear > 0 || q.MaxYear > 0 {
		year := bson.M{}
		if q.MinYear > 0 {
			year["$gte"] = q.MinYear
		}
		if q.MaxYear > 0 {
			year["$lte"] = q.MaxYear
		}
		filter["year"] = year
	}

	if q.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"brand": pattern},
			bson.M{"model": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
		}
	}
	return filter
}

func vehicleSort(sort string) bson.D {
	switch sort {
	case models.SortPriceAsc:
		return bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}
	case models.SortPriceDesc:
		return bson.D{{Key: "price", Value: -1}, {Key: "_id", Value: -1}}
	case models.SortYearDesc:
		return bson.D{{Key: "year", Value: -1}, {Key: "createdAt", Value: -1}}
	case models.SortRating:
		return bson.D{{Key: "averageRating", Value: -1}, {Key: "ratingCount", Value: -1}, {Key: "createdAt", Value: -1}}
	}
	return bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}
}
