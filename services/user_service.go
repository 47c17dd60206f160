package services

import (
	"context"
	"html"
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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserService struct {
	users       *mongo.Collection
	groups      *mongo.Collection
	companies   *mongo.Collection
	otps        *mongo.Collection
	mailBreaker *gobreaker.CircuitBreaker
}

func NewUserService(db *mongo.Database, mailBreaker *gobreaker.CircuitBreaker) *UserService {
	return &UserService{
		users:       db.Collection("users"),
		groups:      db.Collection("user_groups"),
		companies:   db.Collection("companies"),
		otps:        db.Collection("otps"),
		mailBreaker: mailBreaker,
	}
}

// UsersCollection exposes the users collection for the auth middleware.
func (s *UserService) UsersCollection() *mongo.Collection {
	return s.users
}

type LoginResult struct {
	Username     string `json:"username"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login checks credentials and issues the access/refresh token pair. The
// refresh token is persisted on the user record.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, apperrors.InvalidInput("please provide username and password")
	}

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.InvalidInput("invalid credentials")
		}
		return nil, apperrors.Internal("failed to look up user", err)
	}

	if !utils.CheckPassword(user.Password, password) {
		return nil, apperrors.InvalidInput("invalid credentials")
	}

	accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, apperrors.Internal("failed to issue access token", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID.Hex(), user.Username)
	if err != nil {
		return nil, apperrors.Internal("failed to issue refresh token", err)
	}

	update := bson.M{"$set": bson.M{"refreshToken": refreshToken, "updatedAt": time.Now().UTC()}}
	if _, err := s.users.UpdateByID(ctx, user.ID, update); err != nil {
		return nil, apperrors.Internal("failed to store refresh token", err)
	}

	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User %s logged in", user.Username)
	return &LoginResult{Username: user.Username, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Logout clears the persisted refresh token.
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"refreshToken": "", "updatedAt": time.Now().UTC()}}
	res, err := s.users.UpdateByID(ctx, userID, update)
	if err != nil {
		return apperrors.Internal("failed to log out", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("user not found")
	}
	return nil
}

// VerifyOTP marks the user verified when the supplied code matches a stored
// one, then removes all of the user's codes.
func (s *UserService) VerifyOTP(ctx context.Context, userID primitive.ObjectID, code string) (*models.User, error) {
	if len(code) != 6 {
		return nil, apperrors.InvalidInput("please provide a valid otp")
	}

	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to look up user", err)
	}

	if err := s.otps.FindOne(ctx, bson.M{"user": userID, "otp": code}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.InvalidInput("invalid otp")
		}
		return nil, apperrors.Internal("failed to look up otp", err)
	}

	update := bson.M{"$set": bson.M{"verified": true, "updatedAt": time.Now().UTC()}}
	if _, err := s.users.UpdateByID(ctx, userID, update); err != nil {
		return nil, apperrors.Internal("failed to verify user", err)
	}
	if _, err := s.otps.DeleteMany(ctx, bson.M{"user": userID}); err != nil {
		return nil, apperrors.Internal("failed to clear otps", err)
	}

	user.Verified = true
	logging.Logger.Infof("Event ID: USER_VERIFIED, Description: User %s verified via OTP", user.Username)
	return &user, nil
}

// IssueNewOTP re-issues a verification code for an unverified user and mails
// it. An existing code is replaced rather than duplicated.
func (s *UserService) IssueNewOTP(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to look up user", err)
	}
	if user.Verified {
		return nil, apperrors.InvalidInput("user already verified")
	}

	code := utils.GenerateOTPCode()
	filter := bson.M{"user": userID}
	update := bson.M{"$set": bson.M{"otp": code, "createdAt": time.Now().UTC()}}
	if _, err := s.otps.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return nil, apperrors.Internal("failed to issue otp", err)
	}

	s.sendOTPEmail(user.Email, user.Username, code)
	return &user, nil
}

// RegisterUserInput carries the registration request for a new group member.
// Extras holds the values for the group's extra-field schema.
type RegisterUserInput struct {
	Username string                 `json:"username"`
	Email    string                 `json:"email"`
	Password string                 `json:"password"`
	Extras   map[string]interface{} `json:"-"`
}

// RegisterNewUser creates a user inside the given group. The acting user
// must belong to an admin or manager group; the new user's extra fields are
// validated against the target group's schema.
func (s *UserService) RegisterNewUser(ctx context.Context, actor *models.User, groupID string, in RegisterUserInput) (*models.User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperrors.InvalidInput("please fill all default fields for user")
	}

	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid user group id")
	}

	var actorGroup models.UserGroup
	if err := s.groups.FindOne(ctx, bson.M{"_id": actor.UserGroup}).Decode(&actorGroup); err != nil {
		return nil, apperrors.Internal("failed to look up acting user's group", err)
	}
	if !actorGroup.CanManageUsers() {
		return nil, apperrors.Forbidden("only admin or manager can add new users")
	}

	var group models.UserGroup
	if err := s.groups.FindOne(ctx, bson.M{"_id": gid}).Decode(&group); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user group not found")
		}
		return nil, apperrors.Internal("failed to look up user group", err)
	}

	var company models.Company
	if err := s.companies.FindOne(ctx, bson.M{"_id": group.Company}).Decode(&company); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("company not found")
		}
		return nil, apperrors.Internal("failed to look up company", err)
	}

	extras, err := group.ValidateExtras(in.Extras)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	for _, field := range group.Schema {
		if !field.Unique {
			continue
		}
		value, ok := extras[field.Name]
		if !ok {
			continue
		}
		if err := s.users.FindOne(ctx, bson.M{"extras." + field.Name: value}).Err(); err == nil {
			return nil, apperrors.Conflict("value for field " + field.Name + " is already in use")
		} else if err != mongo.ErrNoDocuments {
			return nil, apperrors.Internal("failed to check unique field", err)
		}
	}

	username := models.ScopedUsername(company.CompanyID, html.EscapeString(in.Username))
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Err(); err == nil {
		return nil, apperrors.Conflict("user already exists with the same username")
	} else if err != mongo.ErrNoDocuments {
		return nil, apperrors.Internal("failed to check username", err)
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  username,
		Email:     strings.TrimSpace(in.Email),
		Password:  hashed,
		UserGroup: group.ID,
		Extras:    extras,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.users.InsertOne(ctx, user); err != nil {
		return nil, apperrors.Internal("failed to register user", err)
	}

	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered into group %s", user.Username, group.ID.Hex())
	return user, nil
}

// PopulatedUser is a user with the group and company references resolved.
type PopulatedUser struct {
	ID           primitive.ObjectID     `json:"id"`
	Username     string                 `json:"username"`
	Email        string                 `json:"email"`
	Verified     bool                   `json:"verified"`
	ProfileImage string                 `json:"profileImage,omitempty"`
	Extras       map[string]interface{} `json:"extras,omitempty"`
	UserGroup    *models.UserGroup      `json:"userGroup"`
	Company      *models.Company        `json:"company"`
}

// GetUser returns the user with group and company resolved.
func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*PopulatedUser, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to look up user", err)
	}
	populated, err := s.populateUsers(ctx, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// GetUserByUsername returns the named user with group and company resolved.
func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*PopulatedUser, error) {
	var user models.User
	if err := s.users.FindOne(ctx, bson.M{"username": username}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, apperrors.Internal("failed to look up user", err)
	}
	populated, err := s.populateUsers(ctx, []models.User{user})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// UserFilter carries the optional getAllUsers query filters.
type UserFilter struct {
	Group    string
	Verified string
}

// GetAllUsers returns users matching the filter with references resolved.
func (s *UserService) GetAllUsers(ctx context.Context, filter UserFilter) ([]PopulatedUser, error) {
	query := bson.M{}
	if filter.Group != "" {
		gid, err := primitive.ObjectIDFromHex(filter.Group)
		if err != nil {
			return nil, apperrors.InvalidInput("invalid group id")
		}
		query["userGroup"] = gid
	}
	if filter.Verified != "" {
		query["verified"] = filter.Verified == "true"
	}

	cursor, err := s.users.Find(ctx, query)
	if err != nil {
		return nil, apperrors.Internal("failed to retrieve users", err)
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, apperrors.Internal("failed to decode users", err)
	}
	return s.populateUsers(ctx, users)
}

// GetUsersByGroup returns all members of the group with references resolved.
func (s *UserService) GetUsersByGroup(ctx context.Context, groupID string) ([]PopulatedUser, error) {
	gid, err := primitive.ObjectIDFromHex(groupID)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid group id")
	}
	if err := s.groups.FindOne(ctx, bson.M{"_id": gid}).Err(); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NotFound("group not found")
		}
		return nil, apperrors.Internal("failed to look up group", err)
	}
	return s.GetAllUsers(ctx, UserFilter{Group: groupID})
}

// UserPatch carries the optional profile update fields.
type UserPatch struct {
	Email        *string `json:"email"`
	ProfileImage *string `json:"-"`
}

// UpdateUser applies a profile patch to the named user. Users may only
// update their own profile unless they belong to an admin/manager group.
func (s *UserService) UpdateUser(ctx context.Context, actor *models.User, username string, patch UserPatch) (*PopulatedUser, error) {
	if actor.Username != username {
		var actorGroup models.UserGroup
		if err := s.groups.FindOne(ctx, bson.M{"_id": actor.UserGroup}).Decode(&actorGroup); err != nil {
			return nil, apperrors.Internal("failed to look up acting user's group", err)
		}
		if !actorGroup.CanManageUsers() {
			return nil, apperrors.Forbidden("you are not allowed to update this user")
		}
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Email != nil {
		set["email"] = strings.TrimSpace(*patch.Email)
	}
	if patch.ProfileImage != nil {
		set["profileImage"] = *patch.ProfileImage
	}

	res, err := s.users.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": set})
	if err != nil {
		return nil, apperrors.Internal("failed to update user", err)
	}
	if res.MatchedCount == 0 {
		return nil, apperrors.NotFound("user not found")
	}
	return s.GetUserByUsername(ctx, username)
}

// sendOTPEmail mails a verification code through the circuit breaker. Mail
// failure never fails the calling operation; the code stays in the store and
// can be re-requested.
func (s *UserService) sendOTPEmail(email, name, code string) {
	_, err := s.mailBreaker.Execute(func() (interface{}, error) {
		return nil, utils.SendEmail(email, "Your Verification Code", utils.OTPEmailBody(name, code))
	})
	if err != nil {
		logging.Logger.Warnf("Event ID: OTP_MAIL_FAILED, Description: Failed to send OTP to %s: %v", email, err)
		return
	}
	logging.Logger.Infof("Event ID: OTP_MAIL_SENT, Description: OTP sent to %s", email)
}

func (s *UserService) populateUsers(ctx context.Context, users []models.User) ([]PopulatedUser, error) {
	groupIDs := make(map[primitive.ObjectID]struct{}, len(users))
	for _, u := range users {
		groupIDs[u.UserGroup] = struct{}{}
	}

	groupMap := make(map[primitive.ObjectID]*models.UserGroup, len(groupIDs))
	companyIDs := make(map[primitive.ObjectID]struct{})
	if len(groupIDs) > 0 {
		cursor, err := s.groups.Find(ctx, bson.M{"_id": bson.M{"$in": idList(groupIDs)}})
		if err != nil {
			return nil, apperrors.Internal("failed to retrieve groups", err)
		}
		defer cursor.Close(ctx)

		var groups []models.UserGroup
		if err := cursor.All(ctx, &groups); err != nil {
			return nil, apperrors.Internal("failed to decode groups", err)
		}
		for i := range groups {
			groupMap[groups[i].ID] = &groups[i]
			companyIDs[groups[i].Company] = struct{}{}
		}
	}

	companyMap := make(map[primitive.ObjectID]*models.Company, len(companyIDs))
	if len(companyIDs) > 0 {
		cursor, err := s.companies.Find(ctx, bson.M{"_id": bson.M{"$in": idList(companyIDs)}})
		if err != nil {
			return nil, apperrors.Internal("failed to retrieve companies", err)
		}
		defer cursor.Close(ctx)

		var companies []models.Company
		if err := cursor.All(ctx, &companies); err != nil {
			return nil, apperrors.Internal("failed to decode companies", err)
		}
		for i := range companies {
			companyMap[companies[i].ID] = &companies[i]
		}
	}

	populated := make([]PopulatedUser, 0, len(users))
	for _, u := range users {
		pu := PopulatedUser{
			ID:           u.ID,
			Username:     u.Username,
			Email:        u.Email,
			Verified:     u.Verified,
			ProfileImage: u.ProfileImage,
			Extras:       u.Extras,
			UserGroup:    groupMap[u.UserGroup],
		}
		if pu.UserGroup != nil {
			pu.Company = companyMap[pu.UserGroup.Company]
		}
		populated = append(populated, pu)
	}
	return populated, nil
}
