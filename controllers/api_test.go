package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/managers"
	"github.com/paulfarrow/runclubbackend/middleware"
	"github.com/paulfarrow/runclubbackend/models"
	"github.com/paulfarrow/runclubbackend/storage"
	"github.com/paulfarrow/runclubbackend/store"
	"github.com/paulfarrow/runclubbackend/utils"
)

// tokenNotifier records verification tokens so tests can follow the
// verification link.
type tokenNotifier struct {
	mu     sync.Mutex
	tokens []string
}

func (n *tokenNotifier) SendVerificationEmail(email, firstName, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tokens = append(n.tokens, token)
	return nil
}
func (n *tokenNotifier) SendPhotoSubmitted(photo models.Photo) error                { return nil }
func (n *tokenNotifier) SendPhotoModerated(photo models.Photo, action string) error { return nil }

func (n *tokenNotifier) lastToken() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.tokens) == 0 {
		return ""
	}
	return n.tokens[len(n.tokens)-1]
}

type fakeMailer struct {
	configured bool
	sendErr    error
	sent       int
}

func (m *fakeMailer) Configured() bool { return m.configured }
func (m *fakeMailer) SendContactMessage(name, email, phone, message string) error {
	m.sent++
	return m.sendErr
}

type testAPI struct {
	router    *gin.Engine
	notifier  *tokenNotifier
	uploadDir string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("JWT_SECRET", "test-secret")

	log := zap.NewNop().Sugar()
	st, err := store.New(t.TempDir(), log)
	require.NoError(t, err)

	uploadDir := t.TempDir()
	files, err := storage.NewLocalStorage(uploadDir)
	require.NoError(t, err)

	notifier := &tokenNotifier{}
	users := managers.NewUsers(st, notifier, log)
	runs := managers.NewRuns(st, log)
	photos := managers.NewPhotos(st, files, notifier, log)
	v := utils.NewImageValidator()

	r := gin.New()
	r.POST("/api/auth/register", Register(users))
	r.POST("/api/auth/login", Login(users))
	r.GET("/api/auth/verify-email", VerifyEmail(users))
	r.POST("/api/auth/resend-verification", ResendVerification(users))
	r.GET("/api/auth/user/:userId", GetUser(users))
	r.GET("/api/runs", GetRuns(runs))
	r.POST("/api/runs", middleware.RequireUser(users), AddRun(runs))
	r.GET("/api/user/:userId", GetUserStats(runs))
	r.GET("/api/leaderboard", GetLeaderboard(runs))
	r.GET("/api/photos", GetPhotos(photos))
	r.POST("/api/photos", UploadPhoto(photos, v))
	r.DELETE("/api/photos/:id", DeletePhoto(photos))
	admin := r.Group("/api/admin")
	admin.POST("/login", AdminLogin())
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/pending-photos", GetPendingPhotos(photos))
		admin.POST("/approve-photo/:id", ApprovePhoto(photos))
		admin.POST("/reject-photo/:id", RejectPhoto(photos))
	}

	return &testAPI{router: r, notifier: notifier, uploadDir: uploadDir}
}

func (a *testAPI) do(t *testing.T, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

// registerVerified walks a user through register + verify and returns the
// userId and login token.
func (a *testAPI) registerVerified(t *testing.T, first, last, email, password string) (string, string) {
	t.Helper()
	prev := a.notifier.lastToken()
	rec, body := a.do(t, "POST", "/api/auth/register", gin.H{
		"firstName": first, "lastName": last, "email": email, "password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	userID := body["userId"].(string)

	var token string
	require.Eventually(t, func() bool {
		token = a.notifier.lastToken()
		return token != "" && token != prev
	}, time.Second, 10*time.Millisecond)

	rec, _ = a.do(t, "GET", "/api/auth/verify-email?token="+token, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = a.do(t, "POST", "/api/auth/login", gin.H{"email": email, "password": password}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return userID, body["token"].(string)
}

func TestRegisterResponseHasNoSecrets(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, "POST", "/api/auth/register", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@x.com", "password": "secret1",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	user := body["user"].(map[string]any)
	assert.Equal(t, false, user["isVerified"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "verificationToken")
	assert.NotContains(t, user, "tokenExpiry")

	// Profile lookup exposes no secrets either.
	rec, profile := api.do(t, "GET", "/api/auth/user/"+body["userId"].(string), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "verificationToken")
}

func TestRegisterValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, "POST", "/api/auth/register", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@x.com", "password": "short",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at least 6 characters", body["error"])

	rec, body = api.do(t, "POST", "/api/auth/register", gin.H{"firstName": "Jane"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", body["error"])
}

func TestDuplicateEmailRejected(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, "POST", "/api/auth/register", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := api.do(t, "POST", "/api/auth/register", gin.H{
		"firstName": "Janet", "lastName": "Door", "email": " JANE@X.com ", "password": "secret2",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", body["error"])
}

func TestLoginUnverifiedGetsDiscriminator(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, "POST", "/api/auth/register", gin.H{
		"firstName": "Jane", "lastName": "Doe", "email": "jane@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := api.do(t, "POST", "/api/auth/login", gin.H{"email": "jane@x.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, true, body["needsVerification"])
}

func TestAddRunWithBearerToken(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.registerVerified(t, "Jane", "Doe", "jane@x.com", "secret1")

	rec, body := api.do(t, "POST", "/api/runs",
		gin.H{"location": "Park", "distance": "5.0"},
		map[string]string{"Authorization": "Bearer " + token})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, fmt.Sprintf("%.1f", float64(models.BaselineKm)+5.0), body["totalKm"])

	recent := body["recentRuns"].([]any)
	require.Len(t, recent, 1)
	run := recent[0].(map[string]any)
	assert.Equal(t, "Park", run["location"])
	assert.Equal(t, 5.0, run["distance"])

	stats := body["userStats"].(map[string]any)
	assert.Equal(t, "5.0", stats["totalDistance"])
	assert.Equal(t, float64(1), stats["totalRuns"])
}

func TestAddRunWithLegacyBodyCredentials(t *testing.T) {
	api := newTestAPI(t)
	userID, _ := api.registerVerified(t, "Jane", "Doe", "jane@x.com", "secret1")

	rec, body := api.do(t, "POST", "/api/runs", gin.H{
		"userId": userID, "password": "secret1", "location": "Trail", "distance": 3.2,
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])
}

func TestAddRunRequiresAuth(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, "POST", "/api/runs", gin.H{"location": "Park", "distance": 5}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "User ID and password required", body["error"])

	rec, body = api.do(t, "POST", "/api/runs", gin.H{
		"userId": "nobody", "password": "whatever", "location": "Park", "distance": 5,
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", body["error"])
}

func TestAddRunInvalidDistance(t *testing.T) {
	api := newTestAPI(t)
	_, token := api.registerVerified(t, "Jane", "Doe", "jane@x.com", "secret1")
	auth := map[string]string{"Authorization": "Bearer " + token}

	rec, body := api.do(t, "POST", "/api/runs", gin.H{"location": "Park", "distance": "abc"}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid distance", body["error"])

	rec, body = api.do(t, "POST", "/api/runs", gin.H{"location": "Park", "distance": -4}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid distance", body["error"])

	rec, body = api.do(t, "POST", "/api/runs", gin.H{"distance": 5}, auth)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Location and distance are required", body["error"])
}

func TestLeaderboardEndpoint(t *testing.T) {
	api := newTestAPI(t)
	_, token1 := api.registerVerified(t, "Jane", "Doe", "jane@x.com", "secret1")
	_, token2 := api.registerVerified(t, "Bob", "Hill", "bob@x.com", "secret2")

	rec, _ := api.do(t, "POST", "/api/runs", gin.H{"location": "Park", "distance": 5},
		map[string]string{"Authorization": "Bearer " + token1})
	require.Equal(t, http.StatusOK, rec.Code)
	rec, _ = api.do(t, "POST", "/api/runs", gin.H{"location": "Trail", "distance": 12},
		map[string]string{"Authorization": "Bearer " + token2})
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest("GET", "/api/leaderboard", nil)
	recorder := httptest.NewRecorder()
	api.router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var board []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &board))
	require.Len(t, board, 2)
	assert.Equal(t, "Bob", board[0]["firstName"])
	assert.Equal(t, "12.0", board[0]["totalDistance"])
}

func pngUpload(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("photo", "run.png")
	require.NoError(t, err)
	require.NoError(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func (a *testAPI) uploadPhoto(t *testing.T, fields map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	buf, contentType := pngUpload(t, fields)
	req := httptest.NewRequest("POST", "/api/photos", buf)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var parsed map[string]any
	if rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func (a *testAPI) adminToken(t *testing.T) string {
	t.Helper()
	rec, body := a.do(t, "POST", "/api/admin/login", gin.H{"adminPassword": utils.AdminPassword()}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return body["token"].(string)
}

func TestPhotoModerationFlow(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.uploadPhoto(t, map[string]string{
		"firstName": "Jane", "lastName": "Doe", "caption": "Finish line", "userId": "u1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	photo := body["photo"].(map[string]any)
	photoID := photo["id"].(string)
	assert.Equal(t, "pending", photo["status"])

	// Not in the public gallery yet.
	req := httptest.NewRequest("GET", "/api/photos", nil)
	recorder := httptest.NewRecorder()
	api.router.ServeHTTP(recorder, req)
	assert.Equal(t, "[]", recorder.Body.String())

	admin := map[string]string{"Authorization": "Bearer " + api.adminToken(t)}

	rec, _ = api.do(t, "GET", "/api/admin/pending-photos", nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)

	rec, body = api.do(t, "POST", "/api/admin/approve-photo/"+photoID, nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Photo approved", body["message"])

	recorder = httptest.NewRecorder()
	api.router.ServeHTTP(recorder, httptest.NewRequest("GET", "/api/photos", nil))
	var approved []map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &approved))
	require.Len(t, approved, 1)
	assert.Equal(t, photoID, approved[0]["id"])
}

func TestPhotoRejectRemovesFile(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.uploadPhoto(t, map[string]string{"firstName": "Jane", "lastName": "Doe"})
	require.Equal(t, http.StatusOK, rec.Code)
	photo := body["photo"].(map[string]any)
	filename := photo["filename"].(string)
	require.FileExists(t, filepath.Join(api.uploadDir, filename))

	admin := map[string]string{"Authorization": "Bearer " + api.adminToken(t)}
	rec, respBody := api.do(t, "POST", "/api/admin/reject-photo/"+photo["id"].(string), nil, admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Photo rejected and deleted", respBody["message"])

	_, err := os.Stat(filepath.Join(api.uploadDir, filename))
	assert.True(t, os.IsNotExist(err))

	rec, _ = api.do(t, "GET", "/api/admin/pending-photos", nil, admin)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestPhotoUploadValidation(t *testing.T) {
	api := newTestAPI(t)

	// Missing name fields.
	rec, body := api.uploadPhoto(t, map[string]string{"caption": "no name"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name is required", body["error"])

	// Missing file.
	rec2, parsed := api.do(t, "POST", "/api/photos", gin.H{"firstName": "Jane"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec2.Code)
	assert.Equal(t, "No photo uploaded", parsed["error"])
}

func TestDeletePhotoOwnership(t *testing.T) {
	api := newTestAPI(t)
	userID, token := api.registerVerified(t, "Jane", "Doe", "jane@x.com", "secret1")
	_, otherToken := api.registerVerified(t, "Bob", "Hill", "bob@x.com", "secret2")

	rec, body := api.uploadPhoto(t, map[string]string{
		"firstName": "Jane", "lastName": "Doe", "userId": userID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	photoID := body["photo"].(map[string]any)["id"].(string)

	// Someone else's token is refused.
	rec, _ = api.do(t, "DELETE", "/api/photos/"+photoID, nil,
		map[string]string{"Authorization": "Bearer " + otherToken})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The owner can delete.
	rec, respBody := api.do(t, "DELETE", "/api/photos/"+photoID, nil,
		map[string]string{"Authorization": "Bearer " + token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, respBody["success"])

	rec, respBody = api.do(t, "DELETE", "/api/photos/"+photoID, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Photo not found", respBody["error"])
}

func TestAdminAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec, body := api.do(t, "GET", "/api/admin/pending-photos", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid admin password", body["error"])

	rec, body = api.do(t, "POST", "/api/admin/login", gin.H{"adminPassword": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid admin password", body["error"])

	// Legacy body-secret fallback still works.
	rec, _ = api.do(t, "GET", "/api/admin/pending-photos",
		gin.H{"adminPassword": utils.AdminPassword()}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestContactEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)

	m := &fakeMailer{configured: true}
	r := gin.New()
	r.POST("/api/contact", Contact(m))

	send := func(body gin.H) (*httptest.ResponseRecorder, map[string]any) {
		data, _ := json.Marshal(body)
		req := httptest.NewRequest("POST", "/api/contact", bytes.NewReader(data))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		var parsed map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &parsed)
		return rec, parsed
	}

	rec, body := send(gin.H{"name": "Jane", "email": "jane@x.com", "message": "Hello"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Email sent successfully", body["message"])
	assert.Equal(t, 1, m.sent)

	rec, body = send(gin.H{"name": "Jane"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Name, email, and message are required", body["error"])

	m.configured = false
	rec, body = send(gin.H{"name": "Jane", "email": "jane@x.com", "message": "Hello"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Email service not configured", body["error"])
}
