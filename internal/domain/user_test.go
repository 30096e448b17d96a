package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("  Ada Lovelace ", " Ada@Example.COM ", "Password123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.ID == uuid.Nil {
		t.Error("Expected non-nil UUID, got nil UUID")
	}

	if user.Name != "Ada Lovelace" {
		t.Errorf("Expected trimmed name, got %q", user.Name)
	}

	if user.Email != "ada@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}

	if user.Password != "Password123" {
		t.Error("Expected plaintext password to be kept until hashing")
	}

	if user.CreatedAt.IsZero() || user.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}
}

func TestNewUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		userName  string
		email     string
		password  string
		wantField string
		wantMsg   string
	}{
		{"missing name", "", "a@x.com", "Password123", "name", "Name is required"},
		{"invalid email", "Ada", "not-an-email", "Password123", "email", "Valid email is required"},
		{"short password", "Ada", "a@x.com", "Pa1", "password", "Password must be at least 8 characters"},
		{"no uppercase", "Ada", "a@x.com", "password123", "password", "Password must contain at least one uppercase letter"},
		{"no digit", "Ada", "a@x.com", "Passwordxyz", "password", "Password must contain at least one number"},
		{"missing password", "Ada", "a@x.com", "", "password", "Password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.userName, tt.email, tt.password)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Expected validation error, got %v", err)
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected *ValidationError, got %T", err)
			}

			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.wantField && f.Message == tt.wantMsg {
					found = true
				}
			}
			if !found {
				t.Errorf("Expected field error %s=%q in %v", tt.wantField, tt.wantMsg, verr.Fields)
			}
		})
	}
}

func TestUserApply(t *testing.T) {
	t.Parallel()

	avatar := "https://cdn.example.com/a.png"
	user := &User{
		ID:             uuid.New(),
		Name:           "Ada",
		Email:          "ada@example.com",
		HashedPassword: "hash",
		Avatar:         &avatar,
	}
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	newName := "Ada King"
	if err := user.Apply(UserPatch{Name: &newName}, now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Name != "Ada King" {
		t.Errorf("Expected name to change, got %q", user.Name)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Expected email untouched, got %q", user.Email)
	}
	if user.Avatar == nil || *user.Avatar != avatar {
		t.Error("Expected avatar untouched")
	}
	if !user.UpdatedAt.Equal(now) {
		t.Errorf("Expected UpdatedAt %v, got %v", now, user.UpdatedAt)
	}

	if err := user.Apply(UserPatch{ClearAvatar: true}, now); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if user.Avatar != nil {
		t.Error("Expected avatar to be cleared")
	}

	badEmail := "nope"
	if err := user.Apply(UserPatch{Email: &badEmail}, now); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected validation error for bad email, got %v", err)
	}
}

func TestUserPatchIsEmpty(t *testing.T) {
	t.Parallel()

	if !(UserPatch{}).IsEmpty() {
		t.Error("Expected zero patch to be empty")
	}
	name := "x"
	if (UserPatch{Name: &name}).IsEmpty() {
		t.Error("Expected patch with name to be non-empty")
	}
}
