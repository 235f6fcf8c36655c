package middleware

import (
	"errors"
	"net/http"

	"feedback-system/internal/models"
	"feedback-system/internal/repository"
	"feedback-system/internal/utils"
	"feedback-system/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// AccessTokenCookie is the cookie carrying the short-lived session token.
const AccessTokenCookie = "accessToken"

// Context keys populated by Authenticate for downstream handlers.
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// Authenticate validates the access-token cookie, confirms the encoded
// user still exists, and attaches {userID, role} to the request context.
// Expired and invalid tokens both yield 401 but with distinct messages so
// the client can branch on them.
func Authenticate(users repository.UserRepository, accessSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AccessTokenCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Authentication required - No token provided",
			})
			return
		}

		claims, err := utils.ValidateToken(token, accessSecret)
		if err != nil {
			message := "Invalid token, please login again"
			if errors.Is(err, utils.ErrExpiredToken) {
				message = "Session expired, please login again"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": message,
			})
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "Invalid token, please login again",
			})
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Log.Error("User lookup failed during authentication",
				zap.String("user_id", claims.UserID),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "Internal server error",
			})
			return
		}
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"message": "User belonging to this token no longer exists",
			})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Next()
	}
}

// RequireRoles allows the request through only when the authenticated
// role is in the given set. Must run after Authenticate.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ContextUserRole)
		if exists {
			for _, allowed := range roles {
				if role == allowed {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"status":  "error",
			"message": "You do not have permission to perform this action",
		})
	}
}

// UserIDFromContext returns the authenticated user's id, if present.
func UserIDFromContext(c *gin.Context) (primitive.ObjectID, bool) {
	val, exists := c.Get(ContextUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := val.(primitive.ObjectID)
	return id, ok
}

// RoleFromContext returns the authenticated user's role, if present.
func RoleFromContext(c *gin.Context) (models.Role, bool) {
	val, exists := c.Get(ContextUserRole)
	if !exists {
		return "", false
	}
	role, ok := val.(models.Role)
	return role, ok
}
