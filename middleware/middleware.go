package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/raunak234362/WBT-OneLogin/logging"
	"github.com/raunak234362/WBT-OneLogin/models"
	"github.com/raunak234362/WBT-OneLogin/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type contextKey string

const userContextKey contextKey = "currentUser"

// CurrentUser returns the authenticated user attached to the request, if any.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(userContextKey).(*models.User)
	return user, ok
}

// WithUser attaches a user to the request context. Exported for handler tests.
func WithUser(r *http.Request, user *models.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userContextKey, user))
}

// tokenFromRequest pulls the access token from the Authorization header or
// the accessToken cookie set at login.
func tokenFromRequest(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	if cookie, err := r.Cookie("accessToken"); err == nil {
		return cookie.Value
	}
	return ""
}

// JWTAuthMiddleware validates the request token, resolves it to a user
// record, and attaches the user to the request context.
func JWTAuthMiddleware(users *mongo.Collection) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := tokenFromRequest(r)
			if tokenStr == "" {
				logging.Logger.Warnf("Event ID: AUTH_MISSING_TOKEN, Description: No token on request to %s %s", r.Method, r.URL.Path)
				http.Error(w, "Authorization token missing", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: AUTH_INVALID_TOKEN, Description: Invalid token on request to %s %s: %v", r.Method, r.URL.Path, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			var user models.User
			if err := users.FindOne(r.Context(), bson.M{"_id": userID}).Decode(&user); err != nil {
				logging.Logger.Warnf("Event ID: AUTH_USER_NOT_FOUND, Description: Token user %s not found: %v", claims.UserID, err)
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, WithUser(r, &user))
		})
	}
}
