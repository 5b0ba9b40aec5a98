package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Rating is unique per (vehicleId, userId).
type Rating struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	VehicleID primitive.ObjectID `json:"vehicleId" bson:"vehicleId"`
	UserID    primitive.ObjectID `json:"userId" bson:"userId"`
	Rating    int                `json:"rating" bson:"rating"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type RatingInput struct {
	Rating int `json:"rating" validate:"required,min=1,max=5"`
}

// RatingSummary is the aggregate stored on the vehicle.
type RatingSummary struct {
	VehicleID     primitive.ObjectID `json:"vehicleId"`
	AverageRating float64            `json:"averageRating"`
	RatingCount   int                `json:"ratingCount"`
	UserRating    int                `json:"userRating,omitempty"`
}
