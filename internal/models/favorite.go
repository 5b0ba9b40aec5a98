package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Favorites is the per-user set of saved listings.
type Favorites struct {
	UserID     primitive.ObjectID   `json:"userId" bson:"userId"`
	VehicleIDs []primitive.ObjectID `json:"vehicleIds" bson:"vehicleIds"`
	CreatedAt  time.Time            `json:"createdAt" bson:"createdAt"`
}

type PopulatedFavorites struct {
	UserID   primitive.ObjectID `json:"userId" bson:"userId"`
	Vehicles []Vehicle          `json:"vehicles" bson:"vehicles"`
}
