package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// TaskStore defines persistence for tasks. Every method is scoped by the
// owning user's ID; a task owned by someone else behaves exactly like a task
// that does not exist.
type TaskStore interface {
	// Create inserts a new, already validated task.
	// Returns ErrInvalidEntity if the owner does not exist.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID returns the task with id if it belongs to ownerID.
	// Returns ErrTaskNotFound otherwise.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// List returns the requested page of ownerID's tasks matching a normalized
	// filter, together with the total number of matching tasks.
	List(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, int, error)

	// Update writes every mutable field of task, matching on both task.ID and
	// task.UserID. Returns ErrTaskNotFound if no row matches.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes the task with id if it belongs to ownerID.
	// Returns ErrTaskNotFound otherwise.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// Stats aggregates ownerID's tasks by status and high priority.
	Stats(ctx context.Context, ownerID uuid.UUID) (*domain.TaskStats, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
