package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gulmohar/billing/internal/auth"
	"gulmohar/billing/internal/utils"
)

const (
	// ContextKeyUserID holds the key for the utils.SixID of the caller.
	ContextKeyUserID = "userID"
	// ContextKeyIsAdmin holds the key for admin status in Gin context.
	ContextKeyIsAdmin = "isAdmin"
	// ContextKeyClaims holds the validated *auth.Claims.
	ContextKeyClaims = "claims"
)

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, no token"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := auth.ValidateJWT(parts[1], jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, token failed"})
			return
		}
		userID, err := auth.UserIDFromClaims(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, token failed"})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyIsAdmin, claims.IsAdmin())
		c.Set(ContextKeyClaims, claims)

		c.Next()
	}
}

// AdminMiddleware creates a Gin middleware to check for admin privileges.
// Assumes AuthMiddleware runs first.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(ContextKeyIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not authorized as admin"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id, set by AuthMiddleware.
func UserID(c *gin.Context) (utils.SixID, bool) {
	v, ok := c.Get(ContextKeyUserID)
	if !ok {
		return utils.SixID{}, false
	}
	id, ok := v.(utils.SixID)
	return id, ok
}
