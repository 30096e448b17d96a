// Package redis provides Redis-backed implementations of shared state that
// must survive restarts or be visible to every API instance.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// revokedKeyPrefix namespaces revocation keys.
const revokedKeyPrefix = "revoked:"

// RevocationStore implements auth.RevocationStore on Redis. Each revoked
// token ID is a key whose TTL is the token's remaining lifetime plus the
// validation leeway, so Redis expiry does the sweeping.
type RevocationStore struct {
	client goredis.UniversalClient
	now    func() time.Time
	logger *slog.Logger
}

var _ auth.RevocationStore = (*RevocationStore)(nil)

// NewRevocationStore wraps an existing client.
func NewRevocationStore(client goredis.UniversalClient, logger *slog.Logger) *RevocationStore {
	// ALLOW-PANIC: Constructor enforcing required dependency
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RevocationStore{
		client: client,
		now:    time.Now,
		logger: logger.With(slog.String("component", "redis_revocation_store")),
	}
}

// NewClient parses a redis:// URL and verifies the server answers PING.
func NewClient(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// revocationTTL is how long a revocation must live for a token expiring at
// expiresAt.
func revocationTTL(expiresAt, now time.Time) time.Duration {
	return auth.RetainUntil(expiresAt).Sub(now)
}

func revokedKey(tokenID string) string {
	return revokedKeyPrefix + tokenID
}

// Revoke implements auth.RevocationStore.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	ttl := revocationTTL(expiresAt, s.now())
	if ttl <= 0 {
		// The token can no longer pass validation.
		return nil
	}

	if err := s.client.Set(ctx, revokedKey(tokenID), 1, ttl).Err(); err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to revoke token",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked implements auth.RevocationStore.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if tokenID == "" {
		return false, nil
	}
	err := s.client.Get(ctx, revokedKey(tokenID)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, goredis.Nil):
		return false, nil
	default:
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to check token revocation",
			slog.String("token_id", tokenID),
			slog.String("error", err.Error()))
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
}
