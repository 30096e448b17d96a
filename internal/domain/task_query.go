package domain

import (
	"strings"

	"github.com/google/uuid"
)

// Pagination defaults and bounds for task listings.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// TaskSortField names a sortable task attribute using its wire name.
type TaskSortField string

// Sortable task fields
const (
	SortByCreatedAt TaskSortField = "createdAt"
	SortByUpdatedAt TaskSortField = "updatedAt"
	SortByDueDate   TaskSortField = "dueDate"
	SortByTitle     TaskSortField = "title"
	SortByStatus    TaskSortField = "status"
	SortByPriority  TaskSortField = "priority"
)

// Valid reports whether f is a known sort field.
func (f TaskSortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByUpdatedAt, SortByDueDate, SortByTitle, SortByStatus, SortByPriority:
		return true
	default:
		return false
	}
}

// SortOrder is the direction of a sort.
type SortOrder string

// Sort directions
const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// TaskFilter selects and orders a page of one owner's tasks.
// Nil Status or Priority means the attribute is not filtered.
type TaskFilter struct {
	Search    string
	Status    *TaskStatus
	Priority  *TaskPriority
	Page      int
	Limit     int
	SortBy    TaskSortField
	SortOrder SortOrder
}

// Normalized returns a copy with defaults applied to zero-valued fields and
// the search term trimmed.
func (f TaskFilter) Normalized() TaskFilter {
	f.Search = strings.TrimSpace(f.Search)
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.SortBy == "" {
		f.SortBy = SortByCreatedAt
	}
	if f.SortOrder == "" {
		f.SortOrder = SortDesc
	}
	return f
}

// Validate checks a normalized filter.
func (f TaskFilter) Validate() error {
	verr := &ValidationError{}

	if f.Status != nil && !f.Status.Valid() {
		verr.Add("status", "Invalid status")
	}
	if f.Priority != nil && !f.Priority.Valid() {
		verr.Add("priority", "Invalid priority")
	}
	if f.Page < 1 {
		verr.Add("page", "Page must be a positive integer")
	}
	if f.Limit < 1 || f.Limit > MaxLimit {
		verr.Add("limit", "Limit must be between 1 and 100")
	}
	if !f.SortBy.Valid() {
		verr.Add("sortBy", "Invalid sort field")
	}
	if f.SortOrder != SortAsc && f.SortOrder != SortDesc {
		verr.Add("sortOrder", "Sort order must be asc or desc")
	}

	return verr.OrNil()
}

// Offset returns the number of rows skipped before the requested page.
func (f TaskFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Matches reports whether task satisfies the filter's predicates for owner.
// Pagination and ordering are not considered.
func (f TaskFilter) Matches(ownerID uuid.UUID, task *Task) bool {
	if task.UserID != ownerID {
		return false
	}
	if f.Status != nil && task.Status != *f.Status {
		return false
	}
	if f.Priority != nil && task.Priority != *f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		inTitle := strings.Contains(strings.ToLower(task.Title), needle)
		inDesc := task.Description != nil && strings.Contains(strings.ToLower(*task.Description), needle)
		if !inTitle && !inDesc {
			return false
		}
	}
	return true
}

// TaskPage is one page of a filtered task listing.
type TaskPage struct {
	Tasks      []*Task
	TotalCount int
	Page       int
	TotalPages int
}

// TotalPages returns ceil(total/limit), never less than 1.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

// TaskStats is the per-owner aggregate computed on demand.
type TaskStats struct {
	Total        int `json:"total"`
	Pending      int `json:"pending"`
	InProgress   int `json:"inProgress"`
	Completed    int `json:"completed"`
	HighPriority int `json:"highPriority"`
}

// TallyStats counts tasks by status and high priority.
func TallyStats(tasks []*Task) TaskStats {
	stats := TaskStats{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case TaskStatusPending:
			stats.Pending++
		case TaskStatusInProgress:
			stats.InProgress++
		case TaskStatusCompleted:
			stats.Completed++
		}
		if t.Priority == TaskPriorityHigh {
			stats.HighPriority++
		}
	}
	return stats
}
