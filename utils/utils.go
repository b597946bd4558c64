package utils

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/unicode/norm"
)

const RoleAdmin = "ADMIN"
const RoleMember = "MEMBER"

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// NewVerificationToken returns an opaque single-use token for email
// verification links.
func NewVerificationToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyName lower-cases a name, strips accent marks and collapses anything
// non-alphanumeric to hyphens.
func SlugifyName(name string) string {
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.ToLower(b.String())
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// GenerateUserID derives the stable user identifier issued at registration:
// <first>-<last>-<unix millis>.
func GenerateUserID(firstName, lastName string, now time.Time) string {
	return fmt.Sprintf("%s-%s-%d", SlugifyName(firstName), SlugifyName(lastName), now.UnixMilli())
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func GenerateAccessToken(userID, email, role string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

func ValidateToken(tokenStr string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return token.Claims.(*Claims), nil
}

func AccessTTL() time.Duration {
	minStr := os.Getenv("ACCESS_TOKEN_TTL_MINUTES")
	min, _ := strconv.Atoi(minStr)
	if min <= 0 {
		min = 60
	}
	return time.Duration(min) * time.Minute
}

func DataDir() string {
	if d := os.Getenv("DATA_DIR"); d != "" {
		return d
	}
	return "data"
}

func UploadDir() string {
	if d := os.Getenv("UPLOAD_DIR"); d != "" {
		return d
	}
	return "uploads"
}

// AdminPassword is the shared moderation secret. The historical default is
// kept so existing deployments keep working without an env file.
func AdminPassword() string {
	if p := os.Getenv("ADMIN_PASSWORD"); p != "" {
		return p
	}
	return "dave2025"
}

// ClubEmail is the address moderation and contact mail goes to, and the
// verified sender identity.
func ClubEmail() string {
	if e := os.Getenv("CLUB_EMAIL"); e != "" {
		return e
	}
	return "paulandrewfarrow@gmail.com"
}

// SiteURL is the public origin used in verification links.
func SiteURL() string {
	if u := os.Getenv("SITE_URL"); u != "" {
		return u
	}
	return "http://localhost:3000"
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ImageValidator accepts image uploads only, bounded by a size limit.
// MIME type is sniffed from content, not trusted from the request.
type ImageValidator struct {
	maxSize int64
}

func NewImageValidator() *ImageValidator {
	sizeMB := 5
	if v := os.Getenv("MAX_UPLOAD_SIZE_MB"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			sizeMB = parsed
		}
	}
	return &ImageValidator{maxSize: int64(sizeMB) << 20}
}

func (v *ImageValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	if _, err = file.Read(buffer); err != nil {
		return "", fmt.Errorf("failed to read file header")
	}
	if _, err = file.Seek(0, 0); err != nil {
		return "", fmt.Errorf("failed to reset file reader")
	}

	detectedMime := strings.ToLower(http.DetectContentType(buffer))
	if !strings.HasPrefix(detectedMime, "image/") {
		return "", fmt.Errorf("only image files are allowed")
	}

	return detectedMime, nil
}
