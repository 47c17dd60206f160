package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Access levels a user group can grant.
const (
	AccessAdmin      = "admin"
	AccessManager    = "manager"
	AccessTeamLead   = "team_lead"
	AccessTeamMember = "team_member"
	AccessGuest      = "guest"
)

func ValidAccessLevel(level string) bool {
	switch level {
	case AccessAdmin, AccessManager, AccessTeamLead, AccessTeamMember, AccessGuest:
		return true
	}
	return false
}

// Field type tags for a group's extra-field schema.
const (
	FieldString  = "string"
	FieldNumber  = "number"
	FieldDate    = "date"
	FieldBoolean = "boolean"
	FieldArray   = "array"
	FieldObject  = "object"
)

// GroupField describes one extra field that users registered into the group
// must supply. The schema is data, evaluated at user-creation time.
type GroupField struct {
	Name     string      `json:"fieldName" bson:"fieldName"`
	Type     string      `json:"fieldType" bson:"fieldType"`
	Required bool        `json:"fieldRequired" bson:"fieldRequired"`
	Unique   bool        `json:"fieldUnique" bson:"fieldUnique"`
	Default  interface{} `json:"fieldDefault,omitempty" bson:"fieldDefault,omitempty"`
}

type UserGroup struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Company     primitive.ObjectID `json:"company" bson:"company"`
	Name        string             `json:"userGroupName" bson:"userGroupName"`
	Description string             `json:"userGroupDescription,omitempty" bson:"userGroupDescription,omitempty"`
	AccessLevel string             `json:"accessLevel" bson:"accessLevel"`
	Schema      []GroupField       `json:"userGroupSchema" bson:"userGroupSchema"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CanManageUsers reports whether members of this group may register new users.
func (g *UserGroup) CanManageUsers() bool {
	return g.AccessLevel == AccessAdmin || g.AccessLevel == AccessManager
}

// ValidateExtras checks the supplied extra-field values against the group
// schema and returns the cleaned map: defaults are applied for missing
// optional fields, missing required fields and type mismatches are errors,
// and values not named by the schema are dropped.
func (g *UserGroup) ValidateExtras(values map[string]interface{}) (map[string]interface{}, error) {
	extras := make(map[string]interface{}, len(g.Schema))
	for _, field := range g.Schema {
		value, ok := values[field.Name]
		if !ok || value == nil {
			if field.Required {
				return nil, fmt.Errorf("field %q is required", field.Name)
			}
			if field.Default != nil {
				extras[field.Name] = field.Default
			}
			continue
		}
		if !matchesFieldType(field.Type, value) {
			return nil, fmt.Errorf("field %q must be of type %s", field.Name, field.Type)
		}
		extras[field.Name] = value
	}
	return extras, nil
}

// matchesFieldType checks a decoded JSON value against a schema type tag.
// JSON numbers decode as float64, dates must be RFC 3339 strings.
func matchesFieldType(fieldType string, value interface{}) bool {
	switch fieldType {
	case FieldString:
		_, ok := value.(string)
		return ok
	case FieldDate:
		s, ok := value.(string)
		if !ok {
			return false
		}
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	case FieldNumber:
		switch value.(type) {
		case float64, int, int64:
			return true
		}
		return false
	case FieldBoolean:
		_, ok := value.(bool)
		return ok
	case FieldArray:
		_, ok := value.([]interface{})
		return ok
	case FieldObject:
		_, ok := value.(map[string]interface{})
		return ok
	}
	return false
}
