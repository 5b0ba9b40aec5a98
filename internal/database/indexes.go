package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	return []collectionIndexes{
		{Vehicles, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("idx_status_createdAt"),
			},
			{
				Keys:    bson.D{{Key: "sellerId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("idx_seller_createdAt"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "category", Value: 1}, {Key: "price", Value: 1}},
				Options: options.Index().SetName("idx_browse"),
			},
			{
				Keys:    bson.D{{Key: "listingFee.paymentIntentId", Value: 1}},
				Options: options.Index().SetName("idx_listing_fee_intent").SetSparse(true),
			},
		}},
		{Users, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("idx_email").SetUnique(true),
			},
		}},
		{Ratings, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "vehicleId", Value: 1}, {Key: "userId", Value: 1}},
				Options: options.Index().SetName("idx_vehicle_user").SetUnique(true),
			},
		}},
		{Notifications, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "nextAttemptAt", Value: 1}},
				Options: options.Index().SetName("idx_status_nextAttempt"),
			},
		}},
		{Categories, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "slug", Value: 1}},
				Options: options.Index().SetName("idx_slug").SetUnique(true),
			},
		}},
		{Favorites, []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetName("idx_userId").SetUnique(true),
			},
		}},
	}
}

// EnsureIndexes creates every index the repositories rely on. Existing
// indexes with the same definition are left alone.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	for _, plan := range indexPlan() {
		names, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", plan.collection, err)
		}
		logrus.WithFields(logrus.Fields{
			"collection": plan.collection,
			"indexes":    names,
		}).Info("Indexes ensured")
	}
	return nil
}
