package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storerate/storerate-backend/internal/app/model"
	"github.com/storerate/storerate-backend/internal/app/repository"
	apperrors "github.com/storerate/storerate-backend/internal/errors"
	"github.com/storerate/storerate-backend/pkg/redis"
	"github.com/storerate/storerate-backend/pkg/util"
)

const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRole  = "user_role"
	ContextToken     = "access_token"
)

type AuthMiddleware struct {
	jwtSecret string
	users     repository.UserRepository
}

func NewAuthMiddleware(jwtSecret string, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret, users: users}
}

// Authenticate verifies the bearer token and loads the user's current row.
// The role stored in the context always comes from the database, not from
// the token: a role change (or account deletion) takes effect on the next
// request even for tokens issued before the change.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c)
		if !ok {
			apperrors.Unauthorized(c, "Authentication token required")
			c.Abort()
			return
		}

		claims, err := util.ValidateToken(tokenString, m.jwtSecret)
		if err != nil {
			if err == util.ErrExpiredToken {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Token has expired")
			} else {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authentication token")
			}
			c.Abort()
			return
		}

		blacklisted, err := redis.IsTokenBlacklisted(c.Request.Context(), tokenString)
		if err == nil && blacklisted {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Token has been revoked")
			c.Abort()
			return
		}

		user, err := m.users.FindByID(claims.UserID)
		if err != nil {
			apperrors.Unauthorized(c, "Account no longer exists")
			c.Abort()
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserEmail, user.Email)
		c.Set(ContextUserRole, string(user.Role))
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// OptionalAuthenticate populates the user context when a valid token is
// present but never rejects the request. Anonymous and invalid-token
// requests proceed without user context.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractBearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(tokenString, m.jwtSecret)
		if err != nil {
			c.Next()
			return
		}

		if blacklisted, err := redis.IsTokenBlacklisted(c.Request.Context(), tokenString); err == nil && blacklisted {
			c.Next()
			return
		}

		user, err := m.users.FindByID(claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserEmail, user.Email)
		c.Set(ContextUserRole, string(user.Role))
		c.Set(ContextToken, tokenString)
		c.Next()
	}
}

// RequireRole gates a route to the given roles. Must run after Authenticate.
func (m *AuthMiddleware) RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apperrors.RespondWithError(c, http.StatusForbidden, apperrors.AuthzRoleNotFound, "User role could not be determined")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		apperrors.Forbidden(c, "You do not have permission to access this resource")
		c.Abort()
	}
}

func extractBearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func GetUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(ContextUserID)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

func GetUserEmail(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextUserEmail)
	if !exists {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}

func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	value, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := value.(string)
	if !ok {
		return "", false
	}
	return model.UserRole(role), true
}

func GetToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(ContextToken)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok
}
