package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/paulfarrow/runclubbackend/dto"
)

// ContactMailer is the slice of the mailer the contact endpoint needs.
type ContactMailer interface {
	Configured() bool
	SendContactMessage(name, email, phone, message string) error
}

// Contact forwards a contact-form submission to the club inbox. Unlike the
// fire-and-forget notifications, the send happens synchronously and its
// failure is the response.
func Contact(m ContactMailer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ContactDTO
		if err := c.ShouldBindJSON(&body); err != nil || body.Name == "" || body.Email == "" || body.Message == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name, email, and message are required"})
			return
		}

		if !m.Configured() {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Email service not configured"})
			return
		}

		if err := m.SendContactMessage(body.Name, body.Email, body.Phone, body.Message); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Email sent successfully"})
	}
}
