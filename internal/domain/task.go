package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the progress state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	default:
		return false
	}
}

// TaskPriority is the urgency of a task.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	UserID      uuid.UUID    `json:"userId"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewTaskInput holds the caller-supplied fields for a new task.
// Zero-valued Status and Priority fall back to pending and medium.
type NewTaskInput struct {
	Title       string
	Description *string
	Status      TaskStatus
	Priority    TaskPriority
	DueDate     *time.Time
}

// NewTask builds a validated task for ownerID with a fresh ID and timestamps.
func NewTask(ownerID uuid.UUID, in NewTaskInput) (*Task, error) {
	status := in.Status
	if status == "" {
		status = TaskStatusPending
	}
	priority := in.Priority
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     TruncateToDate(in.DueDate),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks the task's fields and returns a *ValidationError or nil.
func (t *Task) Validate() error {
	verr := &ValidationError{}

	if t.ID == uuid.Nil {
		verr.Add("id", "Task ID is required")
	}
	if t.UserID == uuid.Nil {
		verr.Add("userId", "Owner is required")
	}
	if strings.TrimSpace(t.Title) == "" {
		verr.Add("title", "Title is required")
	}
	if !t.Status.Valid() {
		verr.Add("status", "Invalid status")
	}
	if !t.Priority.Valid() {
		verr.Add("priority", "Invalid priority")
	}

	return verr.OrNil()
}

// TruncateToDate drops the time-of-day part of a due date, keeping the
// calendar date in UTC.
func TruncateToDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// TaskPatch holds the optional fields of a task update. A nil pointer means
// "leave unchanged"; the Clear flags set a nullable field to null.
type TaskPatch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Status           *TaskStatus
	Priority         *TaskPriority
	DueDate          *time.Time
	ClearDueDate     bool
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && !p.ClearDescription &&
		p.Status == nil && p.Priority == nil && p.DueDate == nil && !p.ClearDueDate
}

// Apply merges the patch into the task field by field, bumps UpdatedAt and
// validates the result. ID, owner and CreatedAt are never touched.
func (t *Task) Apply(p TaskPatch, now time.Time) error {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.ClearDescription {
		t.Description = nil
	} else if p.Description != nil {
		desc := *p.Description
		t.Description = &desc
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		t.DueDate = TruncateToDate(p.DueDate)
	}
	t.UpdatedAt = now.UTC()

	return t.Validate()
}
