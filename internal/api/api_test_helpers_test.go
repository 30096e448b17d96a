package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/stretchr/testify/require"
)

const testPassword = "Password123"

// testEnv wires the real handlers, services, token service and gate over
// in-memory stores.
type testEnv struct {
	router      http.Handler
	users       *mocks.MockUserStore
	tasks       *mocks.MockTaskStore
	jwt         auth.JWTService
	revocations *auth.MemoryRevocationStore
}

// envelope mirrors shared.Envelope with raw data for per-test decoding.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:                   strings.Repeat("k", 32),
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	tx := &mocks.NoopTxRunner{}
	revocations := auth.NewMemoryRevocationStore(log)

	userService, err := service.NewUserService(users, tx, mocks.PlainVerifier(), log)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(tasks, tx, log)
	require.NoError(t, err)

	routes := Routes{
		Auth:  NewAuthHandler(userService, jwtService, revocations, log),
		Tasks: NewTaskHandler(taskService, log),
		Users: NewUserHandler(userService, log),
		Gate:  middleware.NewAuthMiddleware(jwtService, users, revocations, log),
	}

	r := chi.NewRouter()
	r.Route("/api", routes.Mount)

	return &testEnv{
		router:      r,
		users:       users,
		tasks:       tasks,
		jwt:         jwtService,
		revocations: revocations,
	}
}

// do sends a request with an optional JSON body and bearer token.
func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	return rr, env
}

// registered is a user created through the register endpoint.
type registered struct {
	ID           uuid.UUID
	AccessToken  string
	RefreshToken string
}

func (e *testEnv) register(t *testing.T, name, email string) registered {
	t.Helper()
	rr, env := e.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var data AuthResponse
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return registered{ID: data.User.ID, AccessToken: data.AccessToken, RefreshToken: data.RefreshToken}
}

// createTask creates a task through the API and returns it.
func (e *testEnv) createTask(t *testing.T, token string, body map[string]interface{}) TaskResponse {
	t.Helper()
	rr, env := e.do(t, http.MethodPost, "/api/tasks", token, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var data TaskEnvelope
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Task
}

func fieldMessages(env envelope) map[string]string {
	out := make(map[string]string, len(env.Errors))
	for _, e := range env.Errors {
		if _, seen := out[e.Field]; !seen {
			out[e.Field] = e.Message
		}
	}
	return out
}
