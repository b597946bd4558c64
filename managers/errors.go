package managers

import "errors"

// Validation errors (HTTP 400 at the API boundary).
var (
	ErrAllFieldsRequired = errors.New("All fields are required")
	ErrPasswordTooShort  = errors.New("Password must be at least 6 characters")
	ErrMissingFields     = errors.New("Email and password are required")
	ErrMissingToken      = errors.New("Verification token is required")
	ErrMissingEmail      = errors.New("Email is required")
	ErrMissingRunFields  = errors.New("Location and distance are required")
	ErrInvalidDistance   = errors.New("Invalid distance")
	ErrMissingName       = errors.New("Name is required")
	ErrNoFile            = errors.New("No photo uploaded")
)

// Conflict errors (HTTP 400; the frontend matches on these strings).
var (
	ErrUserAlreadyExists      = errors.New("User already exists")
	ErrEmailAlreadyRegistered = errors.New("Email already registered")
	ErrAlreadyVerified        = errors.New("Email is already verified")
)

// Auth errors (HTTP 401/403).
var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrEmailNotVerified   = errors.New("Please verify your email address before logging in. Check your inbox for a verification link.")
	ErrNotOwner           = errors.New("You can only delete your own photos")
)

// Token errors (HTTP 400).
var (
	ErrInvalidToken = errors.New("Invalid verification token")
	ErrTokenExpired = errors.New("Verification token has expired. Please register again.")
)

// Lookup and persistence errors.
var (
	ErrUserNotFound  = errors.New("User not found")
	ErrPhotoNotFound = errors.New("Photo not found")
	ErrPersistence   = errors.New("failed to persist document")
)
