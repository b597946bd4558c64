package models

import "time"

// User is the persisted shape inside users.json. The password field holds a
// bcrypt hash; it must never leave the process, so API responses use
// PublicUser instead.
type User struct {
	ID                string     `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Email             string     `json:"email"`
	Password          string     `json:"password"`
	VerificationToken string     `json:"verificationToken,omitempty"`
	TokenExpiry       *time.Time `json:"tokenExpiry,omitempty"`
	IsVerified        bool       `json:"isVerified"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// PublicUser is the projection returned by the API: no password hash, no
// verification token.
type PublicUser struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"isVerified"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}

// UsersDocument is the singleton users.json aggregate, keyed by user ID.
type UsersDocument struct {
	Users map[string]*User `json:"users"`
}

func NewUsersDocument() *UsersDocument {
	return &UsersDocument{Users: map[string]*User{}}
}

// FindByEmail looks a user up by normalized email (trimmed, lower-cased).
func (d *UsersDocument) FindByEmail(email string) *User {
	for _, u := range d.Users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// FindByToken looks a user up by its current verification token.
func (d *UsersDocument) FindByToken(token string) *User {
	for _, u := range d.Users {
		if u.VerificationToken != "" && u.VerificationToken == token {
			return u
		}
	}
	return nil
}
