package api

import (
	"alcyxob/boxing-app/internal/config"
	"alcyxob/boxing-app/internal/repository"
	"alcyxob/boxing-app/internal/repository/memory"
	"alcyxob/boxing-app/internal/service"
	"alcyxob/boxing-app/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	repos  repository.Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode, CORSOrigins: []string{"http://localhost:5173"}},
		JWT:    config.JWTConfig{Secret: "api-test-secret", Expiration: 20 * time.Minute, RefreshExpiration: time.Hour},
		Upload: config.UploadConfig{MaxBytes: 1 << 20},
	}
	logger := zap.NewNop()
	repos := memory.NewRepositories(memory.NewStore())
	files := storage.NewMemoryStorage()
	progress := service.NewProgressService(repos, files, logger)
	services := Services{
		Auth:      service.NewAuthService(repos.Users, cfg.JWT, logger),
		Progress:  progress,
		Programs:  service.NewProgramService(repos, progress, files, logger, cfg.Upload.MaxBytes),
		Movements: service.NewMovementService(repos.Movements, files, logger, cfg.Upload.MaxBytes),
	}
	require.NoError(t, services.Auth.EnsureAdmin(context.Background(), "admin@test.io", "admin-pass"))

	router := gin.New()
	SetupRoutes(router, cfg, services, logger)
	return &testServer{t: t, router: router, repos: repos}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[AuthResponse](s.t, w).Token
}

func (s *testServer) register(username, email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": username, "email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[AuthResponse](s.t, w).Token
}

type programJSON struct {
	ID   string `json:"id"`
	Days []struct {
		ID        string `json:"id"`
		DayNumber int    `json:"dayNumber"`
	} `json:"days"`
}

func (s *testServer) createProgram(token, path string, days int) programJSON {
	s.t.Helper()
	input := make([]gin.H, days)
	for i := range input {
		input[i] = gin.H{"steps": []gin.H{{"title": "Jab drill"}}}
	}
	w := s.do(http.MethodPost, path, token, gin.H{"title": "Southpaw basics", "days": input})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[programJSON](s.t, w)
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProgressEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@test.io", "admin-pass")
	user := s.register("rocky", "rocky@test.io")
	program := s.createProgram(admin, "/api/v1/programs", 2)
	base := "/api/v1/users/" + program.ID

	w := s.do(http.MethodGet, base+"/is-registered", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"isRegistered":false}`, w.Body.String())

	w = s.do(http.MethodGet, base+"/progress", user, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, base+"/register", user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "message")

	w = s.do(http.MethodPost, base+"/register", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"user is already registered for this program"}`, w.Body.String())

	w = s.do(http.MethodGet, base+"/is-registered", user, nil)
	assert.JSONEq(t, `{"isRegistered":true}`, w.Body.String())

	completeBody := gin.H{"programId": program.ID, "dayId": program.Days[0].ID, "lastCompletedStep": 1}
	w = s.do(http.MethodPatch, "/api/v1/users/complete-user-created-day", user, completeBody)
	assert.Equal(t, http.StatusNotFound, w.Code, "registered programs are not in the user-created collection")

	w = s.do(http.MethodPatch, "/api/v1/users/complete-day-default", user, completeBody)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[map[string]any](t, w)
	assert.Equal(t, "Day completed successfully", first["message"])
	assert.Equal(t, false, first["alreadyCompleted"])

	w = s.do(http.MethodPatch, "/api/v1/users/complete-day", user, completeBody)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Day already completed", decode[map[string]any](t, w)["message"])

	w = s.do(http.MethodGet, base+"/progress", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[service.ProgressView](t, w)
	assert.False(t, view.IsCompleted)
	assert.Equal(t, 2, view.TotalDays)
	require.Len(t, view.Progress, 2)
	assert.True(t, view.Progress[0].IsCompleted)
	assert.False(t, view.Progress[1].IsAccessible)
	assert.Len(t, view.CompletedDays, 1)
	require.NotNil(t, view.NewDayLockedToDate)
	assert.Equal(t, view.LastCompletedAt.Add(24*time.Hour), *view.NewDayLockedToDate)

	w = s.do(http.MethodPatch, base+"/complete", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"programId":"`+program.ID+`","isCompleted":true,"completedManually":true}`, w.Body.String())
	w = s.do(http.MethodPatch, base+"/complete", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/stats", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[service.UserStats](t, w)
	assert.Equal(t, "rocky", stats.User.Username)
	assert.Equal(t, 1, stats.Stats.RegisteredPrograms)
	assert.Equal(t, 1, stats.Stats.CompletedRegisteredPrograms)
}

func TestCompleteDayValidation(t *testing.T) {
	s := newTestServer(t)
	user := s.register("rocky", "rocky@test.io")

	w := s.do(http.MethodPatch, "/api/v1/users/complete-day", user, gin.H{"programId": "bad", "dayId": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/users/complete-day", user, gin.H{"dayId": "65f000000000000000000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/users/complete-day", user, gin.H{
		"programId": "65f000000000000000000000",
		"dayId":     "65f000000000000000000001",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/not-an-id/progress", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserCreatedProgramLifecycle(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("owner", "owner@test.io")
	other := s.register("other", "other@test.io")
	program := s.createProgram(owner, "/api/v1/programs/user", 3)

	w := s.do(http.MethodGet, "/api/v1/users/"+program.ID+"/is-registered", owner, nil)
	assert.JSONEq(t, `{"isRegistered":true}`, w.Body.String())

	w = s.do(http.MethodPatch, "/api/v1/users/complete-user-created-day", owner,
		gin.H{"programId": program.ID, "dayId": program.Days[0].ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodDelete, "/api/v1/users/programs/"+program.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/api/v1/programs/"+program.ID, other, nil)
	assert.Equal(t, http.StatusOK, w.Code, "a rejected delete leaves the program in place")

	w = s.do(http.MethodDelete, "/api/v1/users/programs/"+program.ID, owner, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[map[string]any](t, w)
	assert.EqualValues(t, 1, res["deletedPrograms"])
	assert.EqualValues(t, 3, res["deletedDays"])
	assert.EqualValues(t, 3, res["deletedSteps"])
	assert.EqualValues(t, 1, res["removedEnrollments"])

	w = s.do(http.MethodGet, "/api/v1/programs/"+program.ID, owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuthRequirements(t *testing.T) {
	s := newTestServer(t)
	user := s.register("rocky", "rocky@test.io")

	w := s.do(http.MethodGet, "/api/v1/users/stats", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/stats", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/programs", user, gin.H{"title": "x", "days": []gin.H{{}}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/v1/movements", user, gin.H{"movementName": "Jab"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access denied: Role 'user'")

	w = s.do(http.MethodGet, "/api/v1/programs", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCookieAuthentication(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "rocky", "email": "rocky@test.io", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var access *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == accessTokenCookie {
			access = c
		}
	}
	require.NotNil(t, access)
	assert.True(t, access.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rocky@test.io", decode[UserResponse](t, rec).Email)
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	s := newTestServer(t)
	s.register("rocky", "rocky@test.io")
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "r2", "email": "rocky@test.io", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "rocky@test.io", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMovementEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin@test.io", "admin-pass")

	w := s.do(http.MethodPost, "/api/v1/movements", admin, gin.H{
		"movementName":    "Slip",
		"movementContent": []gin.H{{"type": "text", "value": "*move* the head"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[map[string]any](t, w)
	id := created["id"].(string)

	w = s.do(http.MethodGet, "/api/v1/movements/"+id, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "\\u003cem\\u003emove\\u003c/em\\u003e")

	w = s.do(http.MethodPut, "/api/v1/movements/"+id, admin, gin.H{"movementName": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/movements/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/movements/"+id, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	respondError(c, zap.NewNop(), errors.New("mongo: connection refused at 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, statusFor(service.ErrNotFoundOrForbidden))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrAlreadyRegistered))
	assert.Equal(t, http.StatusBadRequest, statusFor(service.ErrInvalidStep))
	assert.Equal(t, http.StatusForbidden, statusFor(service.ErrForbidden))
	assert.Equal(t, http.StatusConflict, statusFor(service.ErrUserAlreadyExists))
}
