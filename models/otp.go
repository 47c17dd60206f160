package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OTP struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	User      primitive.ObjectID `json:"user" bson:"user"`
	Code      string             `json:"otp" bson:"otp"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
