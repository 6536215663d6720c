package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/Rohit1034/HrudaySparshi/common/auth"
	"github.com/Rohit1034/HrudaySparshi/common/logger"
	"github.com/Rohit1034/HrudaySparshi/models"
	"github.com/Rohit1034/HrudaySparshi/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	UserContextKey     = "userID"
	IdentityContextKey = "identity"
)

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(raw string) (auth.Identity, error)
}

// ProfileLookup resolves the stored profile that carries the caller's role.
type ProfileLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate verifies the bearer token and loads the caller's role from
// their profile. Callers without a profile are treated as customers.
func Authenticate(verifier TokenVerifier, users ProfileLookup, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := auth.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
			return
		}

		id, err := verifier.Verify(raw)
		if err != nil {
			logger.FromContext(c, log).Debug("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		identity := models.Identity{UserID: id.UserID, Email: id.Email, Role: models.RoleCustomer}
		user, err := users.FindByID(c.Request.Context(), id.UserID)
		switch {
		case err == nil:
			if user.Role != "" {
				identity.Role = user.Role
			}
		case errors.Is(err, repository.ErrNotFound):
		default:
			logger.FromContext(c, log).Error("failed to load user role", zap.String("user_id", id.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(UserContextKey, identity.UserID)
		c.Set(IdentityContextKey, identity)
		c.Next()
	}
}

// AdminOnly must run after Authenticate.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentUser(c)
		if !ok || !identity.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity set by Authenticate.
func CurrentUser(c *gin.Context) (models.Identity, bool) {
	val, ok := c.Get(IdentityContextKey)
	if !ok {
		return models.Identity{}, false
	}
	identity, ok := val.(models.Identity)
	return identity, ok && identity.UserID != ""
}

func GetUserID(c *gin.Context) (string, error) {
	if val, ok := c.Get(UserContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id, nil
		}
	}
	return "", errors.New("user ID not found in context")
}
