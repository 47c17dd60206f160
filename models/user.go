package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID           primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Username     string                 `json:"username" bson:"username"`
	Email        string                 `json:"email" bson:"email"`
	Password     string                 `json:"-" bson:"password"`
	UserGroup    primitive.ObjectID     `json:"userGroup" bson:"userGroup"`
	Verified     bool                   `json:"verified" bson:"verified"`
	RefreshToken string                 `json:"-" bson:"refreshToken,omitempty"`
	ProfileImage string                 `json:"profileImage,omitempty" bson:"profileImage,omitempty"`
	Extras       map[string]interface{} `json:"extras,omitempty" bson:"extras,omitempty"`
	CreatedAt    time.Time              `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// ScopedUsername builds the company-scoped login name, e.g. "ACME-jdoe".
func ScopedUsername(companyID, username string) string {
	return fmt.Sprintf("%s-%s", strings.ToUpper(companyID), strings.TrimSpace(username))
}
