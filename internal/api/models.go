package api

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// NullableString distinguishes an absent JSON field from an explicit null.
// Set is true whenever the key was present; Value is nil for null.
type NullableString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler. It only runs for keys that are
// present in the document.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// IsNullOrEmpty reports whether a present field asks for the value to be
// cleared.
func (n NullableString) IsNullOrEmpty() bool {
	return n.Set && (n.Value == nil || strings.TrimSpace(*n.Value) == "")
}

// Auth

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// LogoutRequest optionally names a refresh token to revoke along with the
// access token used for the request.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse defines the successful response for register and login.
type AuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`

	// ExpiresAt is the RFC 3339 timestamp when the access token expires
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// Users

// UserResponse is the public view of a user. The password hash is never included.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    *string   `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateProfileRequest holds the optional profile fields. An empty or null
// avatar removes it.
type UpdateProfileRequest struct {
	Name   *string        `json:"name"`
	Email  *string        `json:"email"  validate:"omitempty,email"`
	Avatar NullableString `json:"avatar"`
}

// UpdateProfileResponse wraps the updated user.
type UpdateProfileResponse struct {
	UpdatedUser UserResponse `json:"updatedUser"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

// Tasks

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description *string `json:"description"`
	Status      string  `json:"status"      validate:"omitempty,oneof=pending in-progress completed"`
	Priority    string  `json:"priority"    validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"dueDate"`
}

// UpdateTaskRequest defines the payload for a partial task update. Absent
// fields are left unchanged; a null description or dueDate clears it.
type UpdateTaskRequest struct {
	Title       *string        `json:"title"`
	Description NullableString `json:"description"`
	Status      *string        `json:"status"   validate:"omitempty,oneof=pending in-progress completed"`
	Priority    *string        `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     NullableString `json:"dueDate"`
}

// TaskResponse is the wire form of a task. DueDate is a calendar date (YYYY-MM-DD).
type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"dueDate"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	UserID      uuid.UUID `json:"userId"`
}

// TaskEnvelope wraps a single task as {"task": ...}.
type TaskEnvelope struct {
	Task TaskResponse `json:"task"`
}

// TaskListResponse is one page of tasks.
type TaskListResponse struct {
	Tasks       []TaskResponse `json:"tasks"`
	TotalTasks  int            `json:"totalTasks"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}

func taskToResponse(t *domain.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		UserID:      t.UserID,
	}
	if t.DueDate != nil {
		d := t.DueDate.Format(time.DateOnly)
		resp.DueDate = &d
	}
	return resp
}

func taskPageToResponse(page *domain.TaskPage) TaskListResponse {
	tasks := make([]TaskResponse, 0, len(page.Tasks))
	for _, t := range page.Tasks {
		tasks = append(tasks, taskToResponse(t))
	}
	return TaskListResponse{
		Tasks:       tasks,
		TotalTasks:  page.TotalCount,
		CurrentPage: page.Page,
		TotalPages:  page.TotalPages,
	}
}
