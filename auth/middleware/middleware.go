package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sharevault/sharevault-backend/auth"
)

// UserIDKey is where the authenticated user's id lives in the gin context.
const UserIDKey = "userID"

// AuthRequired rejects requests without a valid Bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := userIDFromHeader(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// AuthOptional attaches the user id when a valid token is present and
// continues unauthenticated otherwise.
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := userIDFromHeader(c); ok {
			c.Set(UserIDKey, userID)
		}
		c.Next()
	}
}

func userIDFromHeader(c *gin.Context) (uuid.UUID, bool) {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return uuid.Nil, false
	}

	sub, err := auth.ValidateToken(parts[1])
	if err != nil {
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return userID, true
}
