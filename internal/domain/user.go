package domain

import (
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Password length bounds. bcrypt ignores input beyond 72 bytes.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var fieldValidator = validator.New()

// User represents a registered account. Tasks are owned by exactly one user.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext, only set while registering or changing the password
	HashedPassword string    `json:"-"`
	Avatar         *string   `json:"avatar"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a new User with a fresh ID and timestamps.
// The plaintext password must be hashed by the store before it is persisted.
func NewUser(name, email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// NormalizeEmail trims and lower-cases an email address so lookups are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate checks the user's fields and returns a *ValidationError listing
// every invalid field, or nil.
func (u *User) Validate() error {
	verr := &ValidationError{}

	if u.ID == uuid.Nil {
		verr.Add("id", "User ID is required")
	}

	if strings.TrimSpace(u.Name) == "" {
		verr.Add("name", "Name is required")
	}

	if !IsValidEmail(u.Email) {
		verr.Add("email", "Valid email is required")
	}

	if u.Password != "" {
		for _, msg := range PasswordProblems(u.Password) {
			verr.Add("password", msg)
		}
	} else if u.HashedPassword == "" {
		verr.Add("password", "Password is required")
	}

	if u.Avatar != nil && *u.Avatar != "" && fieldValidator.Var(*u.Avatar, "url") != nil {
		verr.Add("avatar", "Avatar must be a valid URL")
	}

	return verr.OrNil()
}

// IsValidEmail reports whether email is a syntactically valid address.
func IsValidEmail(email string) bool {
	return email != "" && fieldValidator.Var(email, "email") == nil
}

// PasswordProblems returns the human-readable reasons a password is rejected.
// An empty result means the password is acceptable.
func PasswordProblems(password string) []string {
	var problems []string

	if len(password) < MinPasswordLength {
		problems = append(problems, "Password must be at least 8 characters")
	}
	if len(password) > MaxPasswordLength {
		problems = append(problems, "Password must be at most 72 characters")
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter")
	}
	if !hasDigit {
		problems = append(problems, "Password must contain at least one number")
	}

	return problems
}

// UserPatch holds the optional profile fields of an update. A nil field is
// left unchanged.
type UserPatch struct {
	Name        *string
	Email       *string
	Avatar      *string
	ClearAvatar bool
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Avatar == nil && !p.ClearAvatar
}

// Apply merges the patch into the user field by field and bumps UpdatedAt.
// The result is validated; on error the user may be partially modified and
// should be discarded.
func (u *User) Apply(p UserPatch, now time.Time) error {
	if p.Name != nil {
		u.Name = strings.TrimSpace(*p.Name)
	}
	if p.Email != nil {
		u.Email = NormalizeEmail(*p.Email)
	}
	if p.ClearAvatar {
		u.Avatar = nil
	} else if p.Avatar != nil {
		avatar := strings.TrimSpace(*p.Avatar)
		u.Avatar = &avatar
	}
	u.UpdatedAt = now.UTC()

	return u.Validate()
}
