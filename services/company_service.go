package services

import (
	"context"
	"strings"
	"time"

	"github.com/raunak234362/WBT-OneLogin/apperrors"
	"github.com/raunak234362/WBT-OneLogin/logging"
	"github.com/raunak234362/WBT-OneLogin/models"
	"github.com/raunak234362/WBT-OneLogin/utils"

	"github.com/sony/gobreaker"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type CompanyService struct {
	companies   *mongo.Collection
	groups      *mongo.Collection
	users       *mongo.Collection
	otps        *mongo.Collection
	mailBreaker *gobreaker.CircuitBreaker
}

func NewCompanyService(db *mongo.Database, mailBreaker *gobreaker.CircuitBreaker) *CompanyService {
	return &CompanyService{
		companies:   db.Collection("companies"),
		groups:      db.Collection("user_groups"),
		users:       db.Collection("users"),
		otps:        db.Collection("otps"),
		mailBreaker: mailBreaker,
	}
}

// RegisterCompanyInput carries the company registration form. LogoPath is
// the stored path of the uploaded logo.
type RegisterCompanyInput struct {
	Name        string
	CompanyID   string
	Email       string
	Phone       string
	LogoPath    string
	Address     string
	ColorCode   *models.ColorCode
	Website     string
	Established string
	Type        string
	Size        string
	Country     string
	Username    string
	Password    string
}

// RegisterResult is the payload returned after company registration: the
// first admin user still has to verify via OTP.
type RegisterResult struct {
	UserID   primitive.ObjectID `json:"userId"`
	Username string             `json:"username"`
}

// RegisterCompanyAndUser creates the company, its default Admin group, the
// first admin user, and issues a verification OTP.
func (s *CompanyService) RegisterCompanyAndUser(ctx context.Context, in RegisterCompanyInput) (*RegisterResult, error) {
	if in.Name == "" || in.CompanyID == "" || in.Email == "" || in.Phone == "" {
		return nil, apperrors.InvalidInput("please fill all required fields for company")
	}
	if in.Username == "" || in.Password == "" {
		return nil, apperrors.InvalidInput("please fill all required fields for user")
	}
	if in.LogoPath == "" {
		return nil, apperrors.InvalidInput("please upload a logo for the company")
	}

	companyID := strings.ToUpper(strings.TrimSpace(in.CompanyID))

	filter := bson.M{"$or": bson.A{bson.M{"companyName": in.Name}, bson.M{"companyId": companyID}}}
	if err := s.companies.FindOne(ctx, filter).Err(); err == nil {
		return nil, apperrors.Conflict("company already exists with the same name or id")
	} else if err != mongo.ErrNoDocuments {
		return nil, apperrors.Internal("failed to check existing company", err)
	}

	username := models.ScopedUsername(companyID, in.Username)
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Err(); err == nil {
		return nil, apperrors.Conflict("user already exists with the same username")
	} else if err != mongo.ErrNoDocuments {
		return nil, apperrors.Internal("failed to check existing user", err)
	}

	now := time.Now().UTC()
	company := &models.Company{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		CompanyID:   companyID,
		Email:       in.Email,
		Phone:       in.Phone,
		Logo:        in.LogoPath,
		Address:     in.Address,
		ColorCode:   in.ColorCode,
		Website:     in.Website,
		Established: in.Established,
		Type:        in.Type,
		Size:        in.Size,
		Country:     in.Country,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.companies.InsertOne(ctx, company); err != nil {
		return nil, apperrors.Internal("failed to register company", err)
	}

	group := &models.UserGroup{
		ID:          primitive.NewObjectID(),
		Company:     company.ID,
		Name:        "Admin",
		Description: "Admin of the Company",
		AccessLevel: models.AccessAdmin,
		Schema:      []models.GroupField{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.groups.InsertOne(ctx, group); err != nil {
		return nil, apperrors.Internal("failed to create user group", err)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     in.Email,
		Password:  hashed,
		UserGroup: group.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to create user", err)
	}

	code := utils.GenerateOTPCode()
	otp := &models.OTP{
		ID:        primitive.NewObjectID(),
		User:      user.ID,
		Code:      code,
		CreatedAt: now,
	}
	if _, err := s.otps.InsertOne(ctx, otp); err != nil {
		return nil, apperrors.Internal("failed to issue otp", err)
	}
	s.sendOTPEmail(in.Email, in.Name, code)

	logging.Logger.Infof("Event ID: COMPANY_REGISTERED, Description: Company %s (%s) registered with admin user %s", in.Name, companyID, username)
	return &RegisterResult{UserID: user.ID, Username: user.Username}, nil
}

// GetCompany returns a single company.
func (s *CompanyService) GetCompany(ctx context.Context, companyID string) (*models.Company, error) {
	id, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid company id")
	}
	var company models.Company
	if err := s.companies.FindOne(ctx, bson.M{"_id": id}).Decode(&company); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("company not found")
		}
		return nil, apperrors.Internal("failed to look up company", err)
	}
	return &company, nil
}

// UpdateCompany applies a declarative patch of the optional company fields.
func (s *CompanyService) UpdateCompany(ctx context.Context, companyID string, patch models.CompanyPatch) (*models.Company, error) {
	id, err := primitive.ObjectIDFromHex(companyID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid company id")
	}

	set := patch.BuildUpdate()
	set["updatedAt"] = time.Now().UTC()

	res, err := s.companies.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return nil, apperrors.Internal("failed to update company", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NotFound("company not found")
	}
	return s.GetCompany(ctx, companyID)
}

// sendOTPEmail mirrors UserService.sendOTPEmail; registration must not fail
// on mail trouble.
func (s *CompanyService) sendOTPEmail(email, name, code string) {
	_, err := s.mailBreaker.Execute(func() (interface{}, error) {
		return nil, utils.SendEmail(email, "Your Verification Code", utils.OTPEmailBody(name, code))
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: OTP_MAIL_FAILED, Description: Failed to send OTP to %s: %v", email, err)
		return
	}
	logging.Logger.Infof("Event ID: OTP_MAIL_SENT, Description: OTP sent to %s", email)
}
