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

type ProjectService struct {
	projects    *mongo.Collection
	companies   *mongo.Collection
	users       *mongo.Collection
	fabricators *mongo.Collection
}

func NewProjectService(db *mongo.Database) *ProjectService {
	return &ProjectService{
		projects:    db.Collection("projects"),
		companies:   db.Collection("companies"),
		users:       db.Collection("users"),
		fabricators: db.Collection("fabricators"),
	}
}

type CreateProjectInput struct {
	Company      string `json:"company"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	TeamLeader   string `json:"teamLeader"`
	Fabricator   string `json:"fabricator"`
	StartDate    string `json:"startDate"`
	EstimatedEnd string `json:"estimatedEnd"`
}

// CreateProject persists a project. The team leader reference is what the
// task workflow's approval and reassignment rules key on.
func (s *ProjectService) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Company == "" || in.Name == "" || in.TeamLeader == "" {
		return nil, apperrors.InvalidInput("company, name and team leader are required")
	}

	companyID, err := primitive.ObjectIDFromHex(in.Company)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid company id")
	}
	leaderID, err := primitive.ObjectIDFromHex(in.TeamLeader)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid team leader id")
	}

	if err := s.companies.FindOne(ctx, bson.M{"_id": companyID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("company not found")
		}
		return nil, apperrors.Internal("failed to look up company", err)
	}
	if err := s.users.FindOne(ctx, bson.M{"_id": leaderID}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("team leader not found")
		}
		return nil, apperrors.Internal("failed to look up team leader", err)
	}

	project := &models.Project{
		ID:          primitive.NewObjectID(),
		Company:     companyID,
		Name:        in.Name,
		Description: in.Description,
		TeamLeader:  leaderID,
	}

	if in.Fabricator != "" {
		fabricatorID, err := primitive.ObjectIDFromHex(in.Fabricator)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid fabricator id")
		}
		if err := s.fabricators.FindOne(ctx, bson.M{"_id": fabricatorID}).Err(); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, apperrors.NotFound("fabricator not found")
			}
			return nil, apperrors.Internal("failed to look up fabricator", err)
		}
		project.Fabricator = fabricatorID
	}
	if in.StartDate != "" {
		startDate, err := time.Parse(time.RFC3339, in.StartDate)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid start date")
		}
		project.StartDate = startDate
	}
	if in.EstimatedEnd != "" {
		estimatedEnd, err := time.Parse(time.RFC3339, in.EstimatedEnd)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid estimated end date")
		}
		project.EstimatedEnd = estimatedEnd
	}

	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now

	if _, err := s.projects.InsertOne(ctx, project); err != nil {
		return nil, apperrors.Internal("failed to create project", err)
	}

	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created for company %s", project.Name, companyID.Hex())
	return project, nil
}

// GetProject returns a single project.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	id, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid project id")
	}
	var project models.Project
	if err := s.projects.FindOne(ctx, bson.M{"_id": id}).Decode(&project); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("project not found")
		}
		return nil, apperrors.Internal("failed to look up project", err)
	}
	return &project, nil
}

// GetAllProjects lists projects, optionally restricted to one company.
func (s *ProjectService) GetAllProjects(ctx context.Context, companyID string) ([]models.Project, error) {
	query := bson.M{}
	if companyID != "" {
		id, err := primitive.ObjectIDFromHex(companyID)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid company id")
		}
		query["company"] = id
	}

	cursor, err := s.projects.Find(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve projects", err)
	}
	defer cursor.Close(ctx)

	var projects []models.Project
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, apperrors.Internal("failed to decode projects", err)
	}
	return projects, nil
}
