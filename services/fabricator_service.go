package services

import (
	"context"
	"strings"
	"time"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type FabricatorService struct {
	fabricators *mongo.Collection
	companies   *mongo.Collection
}

func NewFabricatorService(db *mongo.Database) *FabricatorService {
	return &FabricatorService{
		fabricators: db.Collection("fabricators"),
		companies:   db.Collection("companies"),
	}
}

type CreateFabricatorInput struct {
	Company string `json:"company"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func (s *FabricatorService) CreateFabricator(ctx context.Context, in CreateFabricatorInput) (*models.Fabricator, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Company == "" || in.Name == "" {
		return nil, apperrors.InvalidInput("company and name are required")
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

	now := time.Now().UTC()
	fabricator := &models.Fabricator{
		ID:        primitive.NewObjectID(),
		Company:   companyID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.fabricators.InsertOne(ctx, fabricator); err != nil {
		return nil, apperrors.Internal("failed to create fabricator", err)
	}
	return fabricator, nil
}

func (s *FabricatorService) GetFabricators(ctx context.Context, companyID string) ([]models.Fabricator, error) {
	query := bson.M{}
	if companyID != "" {
		id, err := primitive.ObjectIDFromHex(companyID)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid company id")
		}
		query["company"] = id
	}

	cursor, err := s.fabricators.Find(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve fabricators", err)
	}
	defer cursor.Close(ctx)

	var fabricators []models.Fabricator
	if err := cursor.All(ctx, &fabricators); err != nil {
		return nil, apperrors.Internal("failed to decode fabricators", err)
	}
	return fabricators, nil
}
