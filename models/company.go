package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ColorCode struct {
	Primary   string `json:"primary" bson:"primary"`
	Secondary string `json:"secondary" bson:"secondary"`
}

type Company struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"companyName" bson:"companyName"`
	CompanyID   string             `json:"companyId" bson:"companyId"`
	Email       string             `json:"companyEmail" bson:"companyEmail"`
	Phone       string             `json:"companyPhone" bson:"companyPhone"`
	Logo        string             `json:"companyLogo" bson:"companyLogo"`
	Address     string             `json:"companyAddress,omitempty" bson:"companyAddress,omitempty"`
	ColorCode   *ColorCode         `json:"colorCode,omitempty" bson:"colorCode,omitempty"`
	Website     string             `json:"companyWebsite,omitempty" bson:"companyWebsite,omitempty"`
	Established string             `json:"companyEstablished,omitempty" bson:"companyEstablished,omitempty"`
	Type        string             `json:"companyType,omitempty" bson:"companyType,omitempty"`
	Size        string             `json:"companySize,omitempty" bson:"companySize,omitempty"`
	Country     string             `json:"companyCountry,omitempty" bson:"companyCountry,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CompanyPatch carries the optional company fields of an update request.
// Nil pointers mean "leave unchanged"; BuildUpdate turns the patch into a
// single $set document instead of scattering per-field conditionals.
type CompanyPatch struct {
	Email       *string    `json:"email"`
	Phone       *string    `json:"phone"`
	Address     *string    `json:"address"`
	ColorCode   *ColorCode `json:"colorCode"`
	Website     *string    `json:"website"`
	Established *string    `json:"established"`
	Type        *string    `json:"type"`
	Size        *string    `json:"size"`
	Country     *string    `json:"country"`
}

func (p CompanyPatch) BuildUpdate() map[string]interface{} {
	set := map[string]interface{}{}
	if p.Email != nil {
		set["companyEmail"] = *p.Email
	}
	if p.Phone != nil {
		set["companyPhone"] = *p.Phone
	}
	if p.Address != nil {
		set["companyAddress"] = *p.Address
	}
	if p.ColorCode != nil {
		set["colorCode"] = *p.ColorCode
	}
	if p.Website != nil {
		set["companyWebsite"] = *p.Website
	}
	if p.Established != nil {
		set["companyEstablished"] = *p.Established
	}
	if p.Type != nil {
		set["companyType"] = *p.Type
	}
	if p.Size != nil {
		set["companySize"] = *p.Size
	}
	if p.Country != nil {
		set["companyCountry"] = *p.Country
	}
	return set
}
