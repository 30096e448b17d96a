package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/taskboard-api/internal/platform/logger"
)

// RevocationStore records token IDs that must no longer be accepted.
// Entries only need to outlive the token they revoke, which stays valid
// until its expiry plus ClockSkew.
type RevocationStore interface {
	// Revoke marks tokenID as revoked until expiresAt plus ClockSkew.
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error

	// IsRevoked reports whether tokenID has been revoked and not yet expired.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// RetainUntil is when a revocation for a token expiring at expiresAt can be
// forgotten.
func RetainUntil(expiresAt time.Time) time.Time {
	return expiresAt.Add(ClockSkew)
}

// MemoryRevocationStore is a process-local RevocationStore. Expired entries
// are removed by Sweep, which Run calls periodically.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
	logger  *slog.Logger
}

var _ RevocationStore = (*MemoryRevocationStore)(nil)

// NewMemoryRevocationStore creates an empty in-memory revocation set.
func NewMemoryRevocationStore(logger *slog.Logger) *MemoryRevocationStore {
	return NewMemoryRevocationStoreWithClock(logger, time.Now)
}

// NewMemoryRevocationStoreWithClock is NewMemoryRevocationStore with an
// injectable clock.
func NewMemoryRevocationStoreWithClock(logger *slog.Logger, now func() time.Time) *MemoryRevocationStore {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     now,
		logger:  logger.With(slog.String("component", "revocation_store")),
	}
}

// Revoke implements RevocationStore.
func (s *MemoryRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	retainUntil := RetainUntil(expiresAt)

	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.revoked[tokenID]; !ok || retainUntil.After(current) {
		s.revoked[tokenID] = retainUntil
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("token revoked",
		slog.String("token_id", tokenID),
		slog.Time("expires_at", expiresAt))
	return nil
}

// IsRevoked implements RevocationStore.
func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	retainUntil, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	return s.now().Before(retainUntil), nil
}

// Sweep drops entries whose token can no longer validate and returns how
// many were removed.
func (s *MemoryRevocationStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, retainUntil := range s.revoked {
		if !now.Before(retainUntil) {
			delete(s.revoked, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked entries, expired or not.
func (s *MemoryRevocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.revoked)
}

// Run sweeps every interval until ctx is done.
func (s *MemoryRevocationStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(s.now()); removed > 0 {
				s.logger.Debug("swept expired revocations", slog.Int("removed", removed))
			}
		}
	}
}
