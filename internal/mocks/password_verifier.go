package mocks

import "github.com/phrazzld/taskboard-api/internal/service/auth"

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	// ShouldSucceed determines whether the password comparison should succeed
	ShouldSucceed bool

	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// CompareCalledWith stores the arguments passed to Compare for verification
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}

	if m.ShouldSucceed {
		return nil
	}
	return auth.ErrPasswordMismatch
}

// HashedPasswordFor returns the hash MockUserStore stores for password.
// Pair it with PlainVerifier to exercise real password checks in tests.
func HashedPasswordFor(password string) string {
	return "hashed:" + password
}

// PlainVerifier compares against hashes produced by HashedPasswordFor.
func PlainVerifier() *MockPasswordVerifier {
	return &MockPasswordVerifier{
		CompareFn: func(hashedPassword, password string) error {
			if hashedPassword != HashedPasswordFor(password) {
				return auth.ErrPasswordMismatch
			}
			return nil
		},
	}
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)
