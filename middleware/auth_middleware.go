package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/paulfarrow/runclubbackend/managers"
	"github.com/paulfarrow/runclubbackend/utils"
)

type bodyCredentials struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type adminCredentials struct {
	AdminPassword string `json:"adminPassword"`
}

// BearerToken extracts the Authorization bearer token, if any.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// RequireUser authenticates run submissions. A bearer token from /api/auth/login
// is preferred; the legacy userId+password body credentials are still accepted
// because the shipped frontend sends them. The body is bound with
// ShouldBindBodyWith so the handler can bind it again.
func RequireUser(users *managers.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			claims, err := utils.ValidateToken(token, os.Getenv("JWT_SECRET"))
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
				return
			}
			user, err := users.GetProfile(claims.UserID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
				return
			}
			c.Set("userID", user.ID)
			c.Set("firstName", user.FirstName)
			c.Set("lastName", user.LastName)
			c.Next()
			return
		}

		var creds bodyCredentials
		if err := c.ShouldBindBodyWith(&creds, binding.JSON); err != nil || creds.UserID == "" || creds.Password == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID and password required"})
			return
		}
		user, err := users.Authenticate(creds.UserID, creds.Password)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.Set("userID", user.ID)
		c.Set("firstName", user.FirstName)
		c.Set("lastName", user.LastName)
		c.Next()
	}
}

// RequireAdmin gates the moderation surface. An admin bearer token from
// /api/admin/login is preferred; the legacy adminPassword body field remains
// accepted as a fallback.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := BearerToken(c); token != "" {
			claims, err := utils.ValidateToken(token, os.Getenv("JWT_SECRET"))
			if err == nil && claims.Role == utils.RoleAdmin {
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		var creds adminCredentials
		if err := c.ShouldBindBodyWith(&creds, binding.JSON); err == nil && creds.AdminPassword == utils.AdminPassword() {
			c.Next()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin password"})
	}
}
