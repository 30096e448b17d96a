package api

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// filterAll is the query value that disables a status or priority filter.
const filterAll = "all"

// sortAliases accepts the column names older clients send for sortBy.
var sortAliases = map[string]domain.TaskSortField{
	"created_at": domain.SortByCreatedAt,
	"updated_at": domain.SortByUpdatedAt,
	"due_date":   domain.SortByDueDate,
}

// requireUserID extracts the authenticated user's ID, writing a 401 if the
// auth middleware did not run.
func requireUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := shared.UserIDFromContext(r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// pathTaskID parses the {id} URL parameter. A malformed ID cannot name any
// task, so it is reported exactly like a missing one.
func pathTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
		return uuid.Nil, false
	}
	return id, true
}

// parseTaskFilter turns list query parameters into a typed filter. The "all"
// sentinel and empty values become nil filters; non-numeric paging values
// are validation errors. Range checks are left to TaskFilter.Validate.
func parseTaskFilter(q url.Values) (domain.TaskFilter, error) {
	verr := &domain.ValidationError{}
	filter := domain.TaskFilter{
		Search: strings.TrimSpace(q.Get("search")),
	}

	if s := strings.TrimSpace(q.Get("status")); s != "" && !strings.EqualFold(s, filterAll) {
		status := domain.TaskStatus(s)
		filter.Status = &status
	}
	if p := strings.TrimSpace(q.Get("priority")); p != "" && !strings.EqualFold(p, filterAll) {
		priority := domain.TaskPriority(p)
		filter.Priority = &priority
	}

	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			verr.Add("page", "Page must be a positive integer")
		} else {
			filter.Page = page
		}
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			verr.Add("limit", "Limit must be between 1 and 100")
		} else {
			filter.Limit = limit
		}
	}

	if sortBy := strings.TrimSpace(q.Get("sortBy")); sortBy != "" {
		if alias, ok := sortAliases[sortBy]; ok {
			filter.SortBy = alias
		} else {
			filter.SortBy = domain.TaskSortField(sortBy)
		}
	}
	if order := strings.TrimSpace(q.Get("sortOrder")); order != "" {
		filter.SortOrder = domain.SortOrder(strings.ToLower(order))
	}

	return filter, verr.OrNil()
}

// parseDueDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp.
func parseDueDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// requestValidationErrors runs struct validation and returns the collected
// field errors, which may be empty, so callers can add their own.
func requestValidationErrors(req interface{}) *domain.ValidationError {
	var verr *domain.ValidationError
	if err := shared.ValidateRequest(req); err != nil && errors.As(err, &verr) {
		return verr
	}
	return &domain.ValidationError{}
}
