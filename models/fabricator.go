package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fabricator is an external vendor a project's work is contracted to.
type Fabricator struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Company   primitive.ObjectID `json:"company" bson:"company"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email,omitempty" bson:"email,omitempty"`
	Phone     string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Address   string             `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}
