package managers

import "github.com/paulfarrow/runclubbackend/models"

// Notifier sends the site's transactional email. Implementations may block;
// managers always dispatch through notify so a slow or failing mailer never
// delays or fails the request that triggered it.
type Notifier interface {
	SendVerificationEmail(email, firstName, token string) error
	SendPhotoSubmitted(photo models.Photo) error
	SendPhotoModerated(photo models.Photo, action string) error
}

// NopNotifier discards all notifications. Used when no mail API key is
// configured and as the default in tests.
type NopNotifier struct{}

func (NopNotifier) SendVerificationEmail(email, firstName, token string) error { return nil }
func (NopNotifier) SendPhotoSubmitted(photo models.Photo) error                { return nil }
func (NopNotifier) SendPhotoModerated(photo models.Photo, action string) error { return nil }
