package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smartattend_backend/auth"
	"smartattend_backend/recognition"
	"smartattend_backend/store"
	"smartattend_backend/webhook"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	st := store.NewMemoryStore()
	r := gin.New()
	SetupRoutes(r, Options{
		Store:           st,
		Sessions:        auth.NewSessionService(st),
		Matcher:         recognition.NewMockMatcher(),
		Notifier:        webhook.NewNotifier("", ""),
		RecognitionMode: "mock",
		Production:      false,
	})
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func registerUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", "", map[string]any{
		"name":  "Test Student",
		"email": email,
		"role":  "STUDENT",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return resp["userId"].(string)
}

// Register, enroll a face, then log in with the same biometric payload.
func TestFaceLoginEndToEnd(t *testing.T) {
	r := newTestRouter()
	image := "data:image/jpeg;base64,c29tZSBmYWNl"

	userID := registerUser(t, r, "a@x.com")

	w, resp := doJSON(t, r, http.MethodPost, "/face/enroll", "", map[string]any{
		"image":  image,
		"userId": userID,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, resp["faceId"])

	w, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "face",
		"image":  image,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, userID, resp["userId"])
	assert.Equal(t, "face", resp["method"])
	token := resp["token"].(string)
	require.NotEmpty(t, token)

	// The issued token is a live session for that user.
	w, resp = doJSON(t, r, http.MethodGet, "/auth/login", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["authenticated"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "a@x.com", user["email"])
}

// Initiating passwordless for an unregistered email must not reveal that the
// account is missing, and must not create a usable code.
func TestPasswordlessAntiEnumerationEndToEnd(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "nobody@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotContains(t, resp, "code")

	w, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "nobody@x.com",
		"code":   "123456",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid code", resp["error"])
}

func TestPasswordlessLoginEndToEnd(t *testing.T) {
	r := newTestRouter()
	registerUser(t, r, "b@x.com")

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "b@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	code := resp["code"].(string) // echoed outside production

	w, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "b@x.com",
		"code":   code,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"])
}

// Record attendance, then immediately repeat for the same course: the second
// call conflicts and references the first record.
func TestDuplicateAttendanceEndToEnd(t *testing.T) {
	r := newTestRouter()
	registerUser(t, r, "c@x.com")

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "c@x.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "c@x.com",
		"code":   resp["code"].(string),
	})
	require.Equal(t, http.StatusOK, w.Code)
	token := resp["token"].(string)

	w, resp = doJSON(t, r, http.MethodPost, "/attendance", token, map[string]any{
		"recognizedBy": "MANUAL",
		"course":       "math",
		"location":     "Room 101",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := resp["attendance"].(map[string]any)
	assert.Equal(t, "PRESENT", created["type"])

	w, resp = doJSON(t, r, http.MethodPost, "/attendance", token, map[string]any{
		"recognizedBy": "MANUAL",
		"course":       "math",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, true, resp["isDuplicate"])
	existing := resp["existingAttendance"].(map[string]any)
	assert.Equal(t, created["id"], existing["id"])
	assert.Equal(t, "Room 101", existing["location"])

	// Explicitly skipping the check always inserts.
	w, _ = doJSON(t, r, http.MethodPost, "/attendance", token, map[string]any{
		"recognizedBy":       "MANUAL",
		"course":             "math",
		"skipDuplicateCheck": true,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/attendance", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, resp["count"])
}

func TestAttendanceRequiresSession(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/attendance", "", map[string]any{
		"recognizedBy": "MANUAL",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", resp["error"])

	w, resp = doJSON(t, r, http.MethodPost, "/attendance", "bogus-token", map[string]any{
		"recognizedBy": "MANUAL",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid session", resp["error"])
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	r := newTestRouter()
	registerUser(t, r, "dup@x.com")

	w, resp := doJSON(t, r, http.MethodPost, "/auth/register", "", map[string]any{
		"name":  "Someone Else",
		"email": "dup@x.com",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "User with this email already exists", resp["error"])
}

func TestLoginUnknownMethodListsSupported(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method":   "password",
		"email":    "a@x.com",
		"password": "hunter2",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp["error"], "invalid authentication method")
	methods := resp["supportedMethods"].([]any)
	assert.ElementsMatch(t, []any{"face", "voice", "passwordless", "mfa"}, methods)
}

func TestLogoutRevokesSession(t *testing.T) {
	r := newTestRouter()
	registerUser(t, r, "e@x.com")

	_, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "e@x.com",
	})
	_, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "e@x.com",
		"code":   resp["code"].(string),
	})
	token := resp["token"].(string)

	w, _ := doJSON(t, r, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, resp = doJSON(t, r, http.MethodGet, "/auth/login", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, resp["authenticated"])
	assert.Equal(t, "invalid session", resp["error"])
}

func TestVoiceLoginIsStubbed(t *testing.T) {
	r := newTestRouter()

	w, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "voice",
		"audio":  "c29tZSBhdWRpbw==",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Voice authentication not yet implemented", resp["error"])
}

func TestMFAEnableThenLogin(t *testing.T) {
	r := newTestRouter()
	userID := registerUser(t, r, "f@x.com")

	// Bootstrap a session via passwordless to call the protected endpoint.
	_, resp := doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "f@x.com",
	})
	_, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method": "passwordless",
		"email":  "f@x.com",
		"code":   resp["code"].(string),
	})
	token := resp["token"].(string)

	w, resp := doJSON(t, r, http.MethodPost, "/mfa/enable", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	secret := resp["secret"].(string)
	require.NotEmpty(t, secret)
	assert.Contains(t, resp["qrCodeUrl"], "otpauth://totp/")

	code, err := auth.GenerateTOTP(secret, time.Now())
	require.NoError(t, err)

	w, resp = doJSON(t, r, http.MethodPost, "/auth/login", "", map[string]any{
		"method":  "mfa",
		"userId":  userID,
		"mfaCode": code,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.NotEmpty(t, resp["token"])
}
