package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	users  service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, logger *slog.Logger) *UserHandler {
	// ALLOW-PANIC: Constructor enforcing required dependency
	if users == nil {
		panic("users cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		users:  users,
		logger: logger.With(slog.String("component", "user_handler")),
	}
}

// GetProfile handles GET /api/users/profile. The user was already resolved
// by the auth middleware.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := shared.UserFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", userToResponse(user))
}

// UpdateProfile handles PUT /api/users/profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	patch := domain.UserPatch{
		Name:  req.Name,
		Email: req.Email,
	}
	if req.Avatar.IsNullOrEmpty() {
		patch.ClearAvatar = true
	} else if req.Avatar.Set {
		patch.Avatar = req.Avatar.Value
	}

	updated, err := h.users.UpdateProfile(r.Context(), userID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Profile updated successfully",
		UpdateProfileResponse{UpdatedUser: userToResponse(updated)})
}
