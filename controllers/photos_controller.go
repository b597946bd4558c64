package controllers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/paulfarrow/runclubbackend/managers"
	"github.com/paulfarrow/runclubbackend/middleware"
	"github.com/paulfarrow/runclubbackend/utils"
)

func GetPhotos(photos *managers.Photos) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, photos.ListApproved())
	}
}

func UploadPhoto(photos *managers.Photos, v *utils.ImageValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No photo uploaded"})
			return
		}

		contentType, err := v.ValidateFile(fh)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photo"})
			return
		}
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		photo, err := photos.Submit(
			file,
			ext,
			contentType,
			c.PostForm("firstName"),
			c.PostForm("lastName"),
			c.PostForm("caption"),
			c.PostForm("userId"),
		)
		if err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save photo"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"photo":   photo,
		})
	}
}

// DeletePhoto removes a photo. When the caller presents a valid user token,
// ownership is enforced; the legacy token-less call is still honored.
func DeletePhoto(photos *managers.Photos) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerID := ""
		if token := middleware.BearerToken(c); token != "" {
			if claims, err := utils.ValidateToken(token, os.Getenv("JWT_SECRET")); err == nil {
				callerID = claims.UserID
			}
		}

		if err := photos.Delete(c.Param("id"), callerID); err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete photo"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}
