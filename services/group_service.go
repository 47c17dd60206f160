package services

import (
	"context"
	"strings"
	"time"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/logging"
	"github.com/raunak234362/WBT-OneLogin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type GroupService struct {
	groups    *mongo.Collection
	companies *mongo.Collection
}

func NewGroupService(db *mongo.Database) *GroupService {
	return &GroupService{
		groups:    db.Collection("user_groups"),
		companies: db.Collection("companies"),
	}
}

// CreateGroupInput carries a new user group definition, including its
// extra-field schema.
type CreateGroupInput struct {
	Company     string              `json:"company"`
	Name        string              `json:"userGroupName"`
	Description string              `json:"userGroupDescription"`
	AccessLevel string              `json:"accessLevel"`
	Schema      []models.GroupField `json:"userGroupSchema"`
}

// CreateGroup validates and persists a user group for a company.
func (s *GroupService) CreateGroup(ctx context.Context, in CreateGroupInput) (*models.UserGroup, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Company == "" || in.Name == "" || in.AccessLevel == "" {
		return nil, apperrors.InvalidInput("company, name and access level are required")
	}
	if !models.ValidAccessLevel(in.AccessLevel) {
		return nil, apperrors.InvalidInput("invalid access level")
	}
	for _, field := range in.Schema {
		if strings.TrimSpace(field.Name) == "" {
			return nil, apperrors.InvalidInput("schema field name is required")
		}
		switch field.Type {
		case models.FieldString, models.FieldNumber, models.FieldDate, models.FieldBoolean, models.FieldArray, models.FieldObject:
		default:
			return nil, apperrors.InvalidInput("invalid schema field type: " + field.Type)
		}
	}

	companyID, err := primitive.ObjectIDFromHex(in.Company)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid company id")
	}
	if err := s.companies.FindOne(ctx, bson.M{"_id": companyID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("company not found")
		}
		return nil, apperrors.Internal("failed to look up company", err)
	}

	if in.Schema == nil {
		in.Schema = []models.GroupField{}
	}

	now := time.Now().UTC()
	group := &models.UserGroup{
		ID:          primitive.NewObjectID(),
		Company:     companyID,
		Name:        in.Name,
		Description: in.Description,
		AccessLevel: in.AccessLevel,
		Schema:      in.Schema,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.groups.InsertOne(ctx, group); err != nil {
		return nil, apperrors.Internal("failed to create user group", err)
	}

	logging.Logger.Infof("Event ID: GROUP_CREATED, Description: Group %s (%s) created for company %s", group.Name, group.AccessLevel, companyID.Hex())
	return group, nil
}

// GetGroupsByCompany lists a company's user groups.
func (s *GroupService) GetGroupsByCompany(ctx context.Context, companyID string) ([]models.UserGroup, error) {
	id, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid company id")
	}

	cursor, err := s.groups.Find(ctx, bson.M{"company": id})
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve groups", err)
	}
	defer cursor.Close(ctx)

	var groups []models.UserGroup
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, apperrors.Internal("failed to decode groups", err)
	}
	return groups, nil
}
