package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// UserResolver loads the user a token was issued for.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// AuthMiddleware resolves bearer tokens to users and rejects
// unauthenticated requests.
type AuthMiddleware struct {
	jwtService  auth.JWTService
	users       UserResolver
	revocations auth.RevocationStore
	logger      *slog.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(
	jwtService auth.JWTService,
	users UserResolver,
	revocations auth.RevocationStore,
	logger *slog.Logger,
) *AuthMiddleware {
	// ALLOW-PANIC: Constructor enforcing required dependencies
	if jwtService == nil || users == nil || revocations == nil {
		panic("auth middleware dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthMiddleware{
		jwtService:  jwtService,
		users:       users,
		revocations: revocations,
		logger:      logger.With(slog.String("component", "auth_middleware")),
	}
}

// Authenticate validates the bearer token, checks it has not been revoked,
// resolves its user and attaches the user, user ID and claims to the request
// context. Verification failures are 401; failures of the backing stores are
// 500 so an outage never looks like a bad credential.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logger.FromContextOrDefault(ctx, m.logger)

		token, ok := BearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, token)
		if err != nil {
			message := "Invalid or expired token"
			if errors.Is(err, auth.ErrExpiredToken) {
				message = "Token expired"
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, message, err)
			return
		}

		revoked, err := m.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication failed", err)
			return
		}
		if revoked {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Token has been revoked", auth.ErrTokenRevoked)
			return
		}

		user, err := m.users.GetByID(ctx, claims.UserID)
		if err != nil {
			if store.IsNotFoundError(err) {
				log.Debug("token for unknown user", slog.String("user_id", claims.UserID.String()))
				shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found")
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication failed", err)
			return
		}

		ctx = shared.WithAuthenticatedUser(ctx, user, claims)
		ctx = logger.WithLogger(ctx, log.With(slog.String("user_id", user.ID.String())))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}
