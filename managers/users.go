package managers

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/models"
	"github.com/paulfarrow/runclubbackend/store"
	"github.com/paulfarrow/runclubbackend/utils"
)

const usersDocument = "users"

// tokenTTL is how long a verification link stays valid.
const tokenTTL = 24 * time.Hour

// Users owns the users document: registration, login, email verification.
// Every mutation runs under mu so concurrent requests cannot clobber each
// other's read-modify-write cycle.
type Users struct {
	mu       sync.Mutex
	store    *store.Store
	notifier Notifier
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewUsers(st *store.Store, notifier Notifier, log *zap.SugaredLogger) *Users {
	return &Users{store: st, notifier: notifier, log: log, now: time.Now}
}

func (m *Users) readDoc() *models.UsersDocument {
	doc := models.NewUsersDocument()
	m.store.Read(usersDocument, doc)
	if doc.Users == nil {
		doc.Users = map[string]*models.User{}
	}
	return doc
}

// Register creates an unverified user and fires off the verification email.
func (m *Users) Register(firstName, lastName, email, password string) (models.PublicUser, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = utils.NormalizeEmail(email)

	if firstName == "" || lastName == "" || email == "" || password == "" {
		return models.PublicUser{}, ErrAllFieldsRequired
	}
	if len(password) < 6 {
		return models.PublicUser{}, ErrPasswordTooShort
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	now := m.now().UTC()
	userID := utils.GenerateUserID(firstName, lastName, now)

	if _, ok := doc.Users[userID]; ok {
		return models.PublicUser{}, ErrUserAlreadyExists
	}
	if doc.FindByEmail(email) != nil {
		return models.PublicUser{}, ErrEmailAlreadyRegistered
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		m.log.Errorw("hash password", "error", err)
		return models.PublicUser{}, ErrPersistence
	}

	token := utils.NewVerificationToken()
	expiry := now.Add(tokenTTL)
	user := &models.User{
		ID:                userID,
		FirstName:         firstName,
		LastName:          lastName,
		Email:             email,
		Password:          hash,
		VerificationToken: token,
		TokenExpiry:       &expiry,
		IsVerified:        false,
		CreatedAt:         now,
	}
	doc.Users[userID] = user

	if !m.store.Write(usersDocument, doc) {
		return models.PublicUser{}, ErrPersistence
	}

	m.log.Infow("user registered", "userId", userID)
	m.notify(func() error {
		return m.notifier.SendVerificationEmail(email, firstName, token)
	})

	return user.Public(), nil
}

// Login checks credentials against the stored bcrypt hash. An unverified
// account gets a distinguishable error so the caller can offer a resend.
func (m *Users) Login(email, password string) (models.PublicUser, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return models.PublicUser{}, ErrMissingFields
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	user := doc.FindByEmail(email)
	if user == nil || utils.CheckPassword(user.Password, password) != nil {
		return models.PublicUser{}, ErrInvalidCredentials
	}
	if !user.IsVerified {
		return models.PublicUser{}, ErrEmailNotVerified
	}
	return user.Public(), nil
}

// VerifyEmail consumes a verification token. An expired token is permanently
// invalid; the user has to register again.
func (m *Users) VerifyEmail(token string) (models.PublicUser, error) {
	if token == "" {
		return models.PublicUser{}, ErrMissingToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	user := doc.FindByToken(token)
	if user == nil {
		return models.PublicUser{}, ErrInvalidToken
	}
	if user.TokenExpiry == nil || m.now().After(*user.TokenExpiry) {
		return models.PublicUser{}, ErrTokenExpired
	}

	user.IsVerified = true
	user.VerificationToken = ""
	user.TokenExpiry = nil

	if !m.store.Write(usersDocument, doc) {
		return models.PublicUser{}, ErrPersistence
	}
	m.log.Infow("email verified", "userId", user.ID)
	return user.Public(), nil
}

// ResendVerification reissues the token and expiry, replacing any pending one.
func (m *Users) ResendVerification(email string) error {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return ErrMissingEmail
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	user := doc.FindByEmail(email)
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsVerified {
		return ErrAlreadyVerified
	}

	token := utils.NewVerificationToken()
	expiry := m.now().UTC().Add(tokenTTL)
	user.VerificationToken = token
	user.TokenExpiry = &expiry

	if !m.store.Write(usersDocument, doc) {
		return ErrPersistence
	}

	m.notify(func() error {
		return m.notifier.SendVerificationEmail(email, user.FirstName, token)
	})
	return nil
}

// GetProfile returns the public projection of a user.
func (m *Users) GetProfile(userID string) (models.PublicUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	user, ok := doc.Users[userID]
	if !ok {
		return models.PublicUser{}, ErrUserNotFound
	}
	return user.Public(), nil
}

// Authenticate verifies a userId+password pair and returns the public user.
// Run submissions from the legacy frontend still carry credentials in the
// request body instead of a bearer token.
func (m *Users) Authenticate(userID, password string) (models.PublicUser, error) {
	if userID == "" || password == "" {
		return models.PublicUser{}, ErrMissingFields
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	doc := m.readDoc()
	user, ok := doc.Users[userID]
	if !ok || utils.CheckPassword(user.Password, password) != nil {
		return models.PublicUser{}, ErrInvalidCredentials
	}
	return user.Public(), nil
}

func (m *Users) notify(fn func() error) {
	go func() {
		if err := fn(); err != nil {
			m.log.Errorw("send notification", "error", err)
		}
	}()
}
