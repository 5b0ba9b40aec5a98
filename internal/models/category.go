package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `json:"name" bson:"name" validate:"notblank,max=60"`
	Description   string             `json:"description,omitempty" bson:"description,omitempty" validate:"max=300"`
	Slug          string             `json:"slug" bson:"slug"`
	Subcategories []string           `json:"subcategories" bson:"subcategories" validate:"max=50,dive,notblank,max=60"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
}
