package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Project struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Company      primitive.ObjectID `json:"company" bson:"company"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	TeamLeader   primitive.ObjectID `json:"teamLeader" bson:"teamLeader"`
	Fabricator   primitive.ObjectID `json:"fabricator,omitempty" bson:"fabricator,omitempty"`
	StartDate    time.Time          `json:"startDate" bson:"startDate"`
	EstimatedEnd time.Time          `json:"estimatedEnd" bson:"estimatedEnd"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}
