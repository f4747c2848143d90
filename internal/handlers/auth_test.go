package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mkume/task-tracker/internal/database"
	"github.com/mkume/task-tracker/internal/dto"
	"github.com/mkume/task-tracker/internal/middleware"
	"github.com/mkume/task-tracker/internal/models"
	"github.com/mkume/task-tracker/internal/repository"
	"github.com/mkume/task-tracker/internal/services"
	"github.com/mkume/task-tracker/internal/token"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	handler *AuthHandler
	tokens  *token.Manager
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Task{})
	require.NoError(t, err)

	database.SetDB(db)

	tokens := token.NewManager("auth-test-secret")
	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo)
	handler := NewAuthHandler(authService, tokens)

	r := gin.New()
	r.POST("/api/users/register", handler.Register)
	r.POST("/api/users/login", handler.Login)
	r.GET("/api/users/profile", middleware.RequireAuth(tokens), handler.GetProfile)
	r.PUT("/api/users/profile", middleware.RequireAuth(tokens), handler.UpdateProfile)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:      db,
		router:  r,
		handler: handler,
		tokens:  tokens,
	}
}

func (env authTestEnv) request(t *testing.T, method, url string, payload any, bearer string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_RegisterLoginScenario(t *testing.T) {
	env := setupAuthTestEnv(t)

	// Register alice
	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var registered dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))
	require.NotEmpty(t, registered.ID)
	require.Equal(t, "alice", registered.Username)
	require.NotEmpty(t, registered.Token)

	// Register alice again
	w = env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "User already exists")

	// Login with the wrong password
	w = env.request(t, http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice", "password": "wrongpass"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Login with the right password
	w = env.request(t, http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var loggedIn dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loggedIn))
	require.Equal(t, registered.ID, loggedIn.ID)
	require.NotEmpty(t, loggedIn.Token)
}

func TestAuthHandler_Register_UnknownLogin(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/login",
		map[string]string{"username": "nobody", "password": "secret123"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "bob", "password": "abc"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	require.Zero(t, count)
}

func TestAuthHandler_Register_NeverReturnsHash(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "carol", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotContains(t, w.Body.String(), "passwordHash")
	require.NotContains(t, w.Body.String(), "secret123")
}

func TestAuthHandler_Profile(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var registered dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	// Fetch profile with the issued token
	w = env.request(t, http.MethodGet, "/api/users/profile", nil, registered.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var profile dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Equal(t, registered.ID, profile.ID)
	require.Equal(t, "alice", profile.Username)

	// Without a token the profile is unreachable
	w = env.request(t, http.MethodGet, "/api/users/profile", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var registered dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	// Change username and password
	w = env.request(t, http.MethodPut, "/api/users/profile",
		map[string]string{"username": "alice2", "password": "newsecret"}, registered.Token)
	require.Equal(t, http.StatusOK, w.Code)

	var profile dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	require.Equal(t, "alice2", profile.Username)

	// Old password no longer works, new one does
	w = env.request(t, http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice2", "password": "secret123"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(t, http.MethodPost, "/api/users/login",
		map[string]string{"username": "alice2", "password": "newsecret"}, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAuthHandler_UpdateProfile_UsernameTaken(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "bob", "password": "secret123"}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var bob dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bob))

	w = env.request(t, http.MethodPut, "/api/users/profile",
		map[string]string{"username": "alice"}, bob.Token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "User already exists")
}

func TestAuthHandler_Register_UnknownField(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/users/register",
		map[string]string{"username": "alice", "password": "secret123", "role": "admin"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}
