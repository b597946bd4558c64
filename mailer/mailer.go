// Package mailer sends the site's transactional email through SendGrid. It
// implements managers.Notifier; when no API key is configured every send is
// logged and skipped so the rest of the site keeps working.
package mailer

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/models"
)

type Mailer struct {
	apiKey    string
	clubEmail string
	siteURL   string
	log       *zap.SugaredLogger
}

// New builds a Mailer. clubEmail is both the verified sender identity and
// the moderation inbox; siteURL is the public origin used in links.
func New(apiKey, clubEmail, siteURL string, log *zap.SugaredLogger) *Mailer {
	return &Mailer{apiKey: apiKey, clubEmail: clubEmail, siteURL: siteURL, log: log}
}

// Configured reports whether an API key is present; surfaced by /api/health.
func (m *Mailer) Configured() bool {
	return m.apiKey != ""
}

func (m *Mailer) send(toName, toAddr, subject, plain, html string) error {
	if !m.Configured() {
		m.log.Infow("mail skipped, SendGrid not configured", "to", toAddr, "subject", subject)
		return nil
	}
	from := mail.NewEmail("Dave's Running Club", m.clubEmail)
	to := mail.NewEmail(toName, toAddr)
	message := mail.NewSingleEmail(from, subject, to, plain, html)

	client := sendgrid.NewSendClient(m.apiKey)
	resp, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	m.log.Infow("mail sent", "to", toAddr, "subject", subject)
	return nil
}

// SendVerificationEmail mails the 24-hour verification link to a new member.
func (m *Mailer) SendVerificationEmail(email, firstName, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", m.siteURL, token)

	plain := fmt.Sprintf(
		"Hi %s,\n\nThank you for registering with Dave's Running Club. "+
			"To complete your registration, please verify your email address:\n\n%s\n\n"+
			"This link will expire in 24 hours.\n\n"+
			"If you didn't create an account with Dave's Running Club, you can safely ignore this email.\n",
		firstName, verificationURL)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Welcome to Dave's Running Club!</h2>
  <p>Hi %s,</p>
  <p>Thank you for registering with Dave's Running Club. To complete your registration, please verify your email address by clicking the button below:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #667eea; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify Email Address</a>
  </div>
  <p>If the button doesn't work, you can copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
  <p>This link will expire in 24 hours.</p>
  <p>If you didn't create an account with Dave's Running Club, you can safely ignore this email.</p>
  <hr style="margin: 30px 0; border: none; border-top: 1px solid #eee;">
  <p style="color: #666; font-size: 12px;">Dave's Running Club - Honouring Dave Reynolds' memory</p>
</div>`, firstName, verificationURL, verificationURL)

	return m.send(firstName, email, "Verify your email - Dave's Running Club", plain, html)
}

// SendPhotoSubmitted tells the moderator a new photo is waiting for review.
func (m *Mailer) SendPhotoSubmitted(photo models.Photo) error {
	caption := photo.Caption
	if caption == "" {
		caption = "No caption provided"
	}

	plain := fmt.Sprintf(
		"A new photo has been submitted to Dave's Running Club website.\n\n"+
			"Photo Details:\n- Submitted by: %s %s\n- Caption: %s\n- Submitted at: %s\n- Photo ID: %s\n\n"+
			"The photo is now pending approval in the admin panel.\n"+
			"You can review and approve/reject it at: %s/admin\n",
		photo.FirstName, photo.LastName, caption, photo.Timestamp, photo.ID, m.siteURL)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">New Photo Submitted</h2>
  <p>A new photo has been submitted to <strong>Dave's Running Club</strong> website.</p>
  <div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 20px 0;">
    <h3 style="color: #333; margin-top: 0;">Photo Details:</h3>
    <ul style="list-style: none; padding: 0;">
      <li><strong>Submitted by:</strong> %s %s</li>
      <li><strong>Caption:</strong> %s</li>
      <li><strong>Submitted at:</strong> %s</li>
      <li><strong>Photo ID:</strong> %s</li>
    </ul>
  </div>
  <p>The photo is now <strong>pending approval</strong> in the admin panel.</p>
  <div style="background: #667eea; color: white; padding: 15px; border-radius: 10px; text-align: center; margin: 20px 0;">
    <a href="%s/admin" style="color: white; text-decoration: none; font-weight: bold;">Review Photo in Admin Panel</a>
  </div>
</div>`, photo.FirstName, photo.LastName, caption, photo.Timestamp, photo.ID, m.siteURL)

	return m.send("", m.clubEmail, "New Photo Submitted - Dave's Running Club", plain, html)
}

// SendPhotoModerated reports an approve/reject decision back to the
// moderation inbox. action is "approved" or "rejected".
func (m *Mailer) SendPhotoModerated(photo models.Photo, action string) error {
	caption := photo.Caption
	if caption == "" {
		caption = "No caption provided"
	}
	color := "#10b981"
	if action != "approved" {
		color = "#ef4444"
	}

	plain := fmt.Sprintf(
		"A photo has been %s in Dave's Running Club website.\n\n"+
			"Photo Details:\n- Submitted by: %s %s\n- Caption: %s\n- Submitted at: %s\n- Photo ID: %s\n- Action: %s\n",
		action, photo.FirstName, photo.LastName, caption, photo.Timestamp, photo.ID, action)

	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Photo %s</h2>
  <p>A photo has been <strong>%s</strong> in Dave's Running Club website.</p>
  <div style="background: #f8f9fa; padding: 20px; border-radius: 10px; margin: 20px 0;">
    <h3 style="color: #333; margin-top: 0;">Photo Details:</h3>
    <ul style="list-style: none; padding: 0;">
      <li><strong>Submitted by:</strong> %s %s</li>
      <li><strong>Caption:</strong> %s</li>
      <li><strong>Submitted at:</strong> %s</li>
      <li><strong>Photo ID:</strong> %s</li>
      <li><strong>Action:</strong> <span style="color: %s; font-weight: bold;">%s</span></li>
    </ul>
  </div>
</div>`, action, action, photo.FirstName, photo.LastName, caption, photo.Timestamp, photo.ID, color, action)

	subject := fmt.Sprintf("Photo %s - Dave's Running Club", action)
	return m.send("", m.clubEmail, subject, plain, html)
}

// SendContactMessage forwards a contact-form submission to the club inbox.
// Unlike the notifications above, this one is sent synchronously: the caller
// gets an error when the mail cannot go out.
func (m *Mailer) SendContactMessage(name, email, phone, message string) error {
	if phone == "" {
		phone = "Not provided"
	}
	plain := fmt.Sprintf("Name: %s\nEmail: %s\nPhone: %s\n\nMessage:\n%s\n", name, email, phone, message)
	return m.send("", m.clubEmail, "Message from Dave's Running Club website", plain, plain)
}
