package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/taskboard-api/internal/api"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   strings.Repeat("s", 32),
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	tx := &mocks.NoopTxRunner{}
	revocations := &mocks.MockRevocationStore{}

	userService, err := service.NewUserService(users, tx, mocks.PlainVerifier(), log)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(mocks.NewMockTaskStore(), tx, log)
	require.NoError(t, err)

	routes := api.Routes{
		Auth:  api.NewAuthHandler(userService, jwtService, revocations, log),
		Tasks: api.NewTaskHandler(taskService, log),
		Users: api.NewUserHandler(userService, log),
		Gate:  middleware.NewAuthMiddleware(jwtService, users, revocations, log),
	}
	return newRouter(routes, []string{"https://app.example.com"}, log)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func serve(t *testing.T, h http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	var env envelope
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	}
	return rr, env
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rr, env := serve(t, router, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_NotFound(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	for _, path := range []string{"/nope", "/api/nope", "/api/auth/unknown"} {
		rr, env := serve(t, router, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.False(t, env.Success, path)
		assert.Equal(t, "Route not found", env.Message, path)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	rr, env := serve(t, router, httptest.NewRequest(http.MethodDelete, "/api/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "Method not allowed", env.Message)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/tasks"},
		{http.MethodPost, "/api/tasks"},
		{http.MethodGet, "/api/tasks/stats"},
		{http.MethodDelete, "/api/tasks/00000000-0000-0000-0000-000000000001"},
		{http.MethodGet, "/api/users/profile"},
		{http.MethodPost, "/api/auth/logout"},
	}

	for _, tc := range tests {
		rr, env := serve(t, router, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, tc.path)
		assert.Equal(t, "No token provided", env.Message, tc.path)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "https://app.example.com", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RequestIDEchoed(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	rr, _ := serve(t, router, req)

	assert.Equal(t, "req-123", rr.Header().Get(middleware.RequestIDHeader))
}
