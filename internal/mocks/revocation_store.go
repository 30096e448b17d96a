package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

// MockRevocationStore implements auth.RevocationStore for testing.
// Without overrides it records revoked IDs in memory and never expires them.
type MockRevocationStore struct {
	RevokeFn    func(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevokedFn func(ctx context.Context, tokenID string) (bool, error)

	mu      sync.Mutex
	revoked map[string]time.Time
}

// Revoke implements auth.RevocationStore.
func (m *MockRevocationStore) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if m.RevokeFn != nil {
		return m.RevokeFn(ctx, tokenID, expiresAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revoked == nil {
		m.revoked = make(map[string]time.Time)
	}
	m.revoked[tokenID] = expiresAt
	return nil
}

// IsRevoked implements auth.RevocationStore.
func (m *MockRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if m.IsRevokedFn != nil {
		return m.IsRevokedFn(ctx, tokenID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// Revoked returns a copy of the revoked token IDs.
func (m *MockRevocationStore) Revoked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.revoked))
	for id := range m.revoked {
		ids = append(ids, id)
	}
	return ids
}

var _ auth.RevocationStore = (*MockRevocationStore)(nil)
