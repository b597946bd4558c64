package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulfarrow/runclubbackend/dto"
	"github.com/paulfarrow/runclubbackend/managers"
	"github.com/paulfarrow/runclubbackend/utils"
)

func Register(users *managers.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegisterDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
			return
		}

		user, err := users.Register(body.FirstName, body.LastName, body.Email, body.Password)
		if err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Registration successful! Please check your email to verify your account.",
			"userId":  user.ID,
			"user":    user,
		})
	}
}

func Login(users *managers.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}

		user, err := users.Login(body.Email, body.Password)
		if err != nil {
			if errors.Is(err, managers.ErrEmailNotVerified) {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error":             err.Error(),
					"needsVerification": true,
				})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		token, err := utils.GenerateAccessToken(user.ID, user.Email, utils.RoleMember, utils.AccessTTL())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to login"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Login successful",
			"userId":  user.ID,
			"user":    user,
			"token":   token,
		})
	}
}

func VerifyEmail(users *managers.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.VerifyEmail(c.Query("token"))
		if err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify email"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Email verified successfully! You can now log in.",
			"user":    user,
		})
	}
}

func ResendVerification(users *managers.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ResendVerificationDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required"})
			return
		}

		if err := users.ResendVerification(body.Email); err != nil {
			if errors.Is(err, managers.ErrPersistence) {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resend verification email"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Verification email sent successfully!",
		})
	}
}

func GetUser(users *managers.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.GetProfile(c.Param("userId"))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
