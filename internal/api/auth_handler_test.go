package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/middleware"
	"github.com/phrazzld/taskboard-api/internal/config"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/mocks"
	"github.com/phrazzld/taskboard-api/internal/service"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	t.Run("success returns user and tokens", func(t *testing.T) {
		env := newTestEnv(t)
		rr, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Ada",
			"email":    "Ada@Example.com",
			"password": testPassword,
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.True(t, body.Success)
		assert.Equal(t, "Registration successful", body.Message)

		var data AuthResponse
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, "ada@example.com", data.User.Email)
		assert.Equal(t, "Ada", data.User.Name)
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.RefreshToken)
		assert.NotContains(t, string(body.Data), "password")
		assert.NotContains(t, string(body.Data), "hashed")

		claims, err := env.jwt.ValidateToken(context.Background(), data.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, data.User.ID, claims.UserID)
	})

	t.Run("duplicate email is 409 and creates no user", func(t *testing.T) {
		env := newTestEnv(t)
		env.register(t, "Ada", "a@x.com")

		rr, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name":     "Imposter",
			"email":    "a@x.com",
			"password": testPassword,
		})

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.False(t, body.Success)
		assert.Equal(t, "Email already registered", body.Message)
		assert.Equal(t, 1, env.users.Count())
	})

	t.Run("validation errors", func(t *testing.T) {
		env := newTestEnv(t)

		tests := []struct {
			name    string
			payload map[string]string
			want    map[string]string
		}{
			{
				name:    "missing fields",
				payload: map[string]string{},
				want: map[string]string{
					"name":     "Name is required",
					"email":    "Valid email is required",
					"password": "Password is required",
				},
			},
			{
				name:    "invalid email",
				payload: map[string]string{"name": "Ada", "email": "nope", "password": testPassword},
				want:    map[string]string{"email": "Valid email is required"},
			},
			{
				name:    "weak password",
				payload: map[string]string{"name": "Ada", "email": "ada@example.com", "password": "short"},
				want:    map[string]string{"password": "Password must be at least 8 characters"},
			},
			{
				name:    "password without digit",
				payload: map[string]string{"name": "Ada", "email": "ada@example.com", "password": "Passwordonly"},
				want:    map[string]string{"password": "Password must contain at least one number"},
			},
		}

		for _, tc := range tests {
			rr, body := env.do(t, http.MethodPost, "/api/auth/register", "", tc.payload)
			assert.Equal(t, http.StatusBadRequest, rr.Code, tc.name)
			assert.Equal(t, "Validation failed", body.Message, tc.name)
			assert.Equal(t, tc.want, fieldMessages(body), tc.name)
		}
		assert.Equal(t, 0, env.users.Count())
	})

	t.Run("malformed JSON", func(t *testing.T) {
		env := newTestEnv(t)
		rr, body := env.do(t, http.MethodPost, "/api/auth/register", "", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid request format", body.Message)
	})
}

func TestLogin(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com")

	t.Run("success", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ADA@example.com",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "Login successful", body.Message)

		var data AuthResponse
		require.NoError(t, json.Unmarshal(body.Data, &data))
		assert.Equal(t, user.ID, data.User.ID)
		assert.NotEmpty(t, data.AccessToken)
		assert.NotEmpty(t, data.ExpiresAt)
	})

	t.Run("wrong password issues no token", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ada@example.com",
			"password": "Wrong12345",
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", body.Message)
		assert.Empty(t, body.Data)
	})

	t.Run("unknown email looks the same", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "nobody@example.com",
			"password": testPassword,
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid credentials", body.Message)
	})

	t.Run("missing password", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ada@example.com"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Password is required", fieldMessages(body)["password"])
	})
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com")

	t.Run("valid refresh token", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
			"refreshToken": user.RefreshToken,
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var data RefreshTokenResponse
		require.NoError(t, json.Unmarshal(body.Data, &data))
		claims, err := env.jwt.ValidateToken(context.Background(), data.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
			"refreshToken": user.AccessToken,
		})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "Invalid refresh token", body.Message)
	})

	t.Run("garbage token", func(t *testing.T) {
		rr, _ := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": "not.a.jwt"})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		rr, body := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, fieldMessages(body), "refreshToken")
	})

	t.Run("token for deleted user", func(t *testing.T) {
		ghost, err := env.jwt.GenerateRefreshToken(context.Background(), uuid.New())
		require.NoError(t, err)

		rr, body := env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": ghost})
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Equal(t, "User not found", body.Message)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com")

	rr, _ := env.do(t, http.MethodGet, "/api/users/profile", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, body := env.do(t, http.MethodPost, "/api/auth/logout", user.AccessToken, map[string]string{
		"refreshToken": user.RefreshToken,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Logout successful", body.Message)
	assert.Equal(t, 2, env.revocations.Len())

	rr, body = env.do(t, http.MethodGet, "/api/users/profile", user.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Token has been revoked", body.Message)

	rr, _ = env.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refreshToken": user.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLogout_WithoutBody(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	user := env.register(t, "Ada", "ada@example.com")

	rr, _ := env.do(t, http.MethodPost, "/api/auth/logout", user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, env.revocations.Len())
}

func TestLogout_RequiresToken(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	rr, body := env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "No token provided", body.Message)
}

func TestAuthHandler_TokenGenerationFailure(t *testing.T) {
	t.Parallel()

	users := mocks.NewMockUserStore()
	userService, err := service.NewUserService(users, &mocks.NoopTxRunner{}, mocks.PlainVerifier(), nil)
	require.NoError(t, err)

	jwtService := &mocks.MockJWTService{
		GenerateTokenPairFn: func(context.Context, uuid.UUID) (*auth.TokenPair, error) {
			return nil, errors.New("signing key unavailable")
		},
	}
	h := NewAuthHandler(userService, jwtService, &mocks.MockRevocationStore{}, nil)

	env := &testEnv{router: http.HandlerFunc(h.Register)}
	rr, body := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Ada",
		"email":    "ada@example.com",
		"password": testPassword,
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to generate authentication token", body.Message)
	assert.NotContains(t, rr.Body.String(), "signing key")
}

func TestAuthResponse_ExpiresAtFormat(t *testing.T) {
	t.Parallel()
	user := &domain.User{ID: uuid.New(), Name: "Ada", Email: "ada@example.com", HashedPassword: "secret-hash"}
	expires := time.Date(2026, 10, 19, 12, 0, 0, 0, time.FixedZone("CEST", 2*60*60))

	resp := authResponse(user, &auth.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresAt: expires})

	assert.Equal(t, "2026-10-19T10:00:00Z", resp.ExpiresAt)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogout_RevocationOutlivesTokenExpiry(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	advance := func(to time.Time) {
		mu.Lock()
		defer mu.Unlock()
		now = to
	}

	jwtService, err := auth.NewJWTServiceWithClock(config.AuthConfig{
		JWTSecret:                   strings.Repeat("k", 32),
		TokenLifetimeMinutes:        15,
		RefreshTokenLifetimeMinutes: 60,
	}, clock)
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	revocations := auth.NewMemoryRevocationStoreWithClock(nil, clock)
	userService, err := service.NewUserService(users, &mocks.NoopTxRunner{}, mocks.PlainVerifier(), nil)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(mocks.NewMockTaskStore(), &mocks.NoopTxRunner{}, nil)
	require.NoError(t, err)

	routes := Routes{
		Auth:  NewAuthHandler(userService, jwtService, revocations, nil),
		Tasks: NewTaskHandler(taskService, nil),
		Users: NewUserHandler(userService, nil),
		Gate:  middleware.NewAuthMiddleware(jwtService, users, revocations, nil),
	}
	r := chi.NewRouter()
	r.Route("/api", routes.Mount)
	env := &testEnv{router: r}

	user := env.register(t, "Ada", "ada@example.com")
	rr, _ := env.do(t, http.MethodPost, "/api/auth/logout", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	// Fifteen minutes in the token has expired but is still inside the
	// validation leeway.
	advance(now.Add(15*time.Minute + auth.ClockSkew/2))

	rr, body := env.do(t, http.MethodGet, "/api/users/profile", user.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Token has been revoked", body.Message)
}
