package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/paulfarrow/runclubbackend/dto"
	"github.com/paulfarrow/runclubbackend/managers"
	"github.com/paulfarrow/runclubbackend/utils"
)

// AdminLogin checks the shared moderation secret and issues an admin token
// so later requests don't have to carry the secret itself.
func AdminLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.AdminLoginDTO
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil || body.AdminPassword != utils.AdminPassword() {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid admin password"})
			return
		}

		token, err := utils.GenerateAccessToken("admin", "", utils.RoleAdmin, utils.AccessTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Admin authenticated",
			"token":   token,
		})
	}
}

func GetPendingPhotos(photos *managers.Photos) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, photos.ListPending())
	}
}

func ApprovePhoto(photos *managers.Photos) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := photos.Approve(c.Param("id")); err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve photo"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Photo approved"})
	}
}

func RejectPhoto(photos *managers.Photos) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := photos.Reject(c.Param("id")); err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject photo"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Photo rejected and deleted"})
	}
}
