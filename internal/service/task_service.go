package service

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/logger"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// TaskService provides the owner-scoped task operations. Every method takes
// the authenticated owner's ID; tasks belonging to anyone else are reported
// as store.ErrTaskNotFound.
type TaskService interface {
	// CreateTask validates and stores a new task for ownerID.
	CreateTask(ctx context.Context, ownerID uuid.UUID, in domain.NewTaskInput) (*domain.Task, error)

	// ListTasks returns one page of ownerID's tasks matching filter.
	ListTasks(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) (*domain.TaskPage, error)

	// GetTask returns a single task owned by ownerID.
	GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)

	// UpdateTask merges patch into the stored task and returns the result.
	UpdateTask(ctx context.Context, id, ownerID uuid.UUID, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask removes a task owned by ownerID.
	DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error

	// Stats aggregates ownerID's tasks.
	Stats(ctx context.Context, ownerID uuid.UUID) (*domain.TaskStats, error)
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	tasks  store.TaskStore
	tx     store.TxRunner
	now    func() time.Time
	logger *slog.Logger
}

// NewTaskService creates a new TaskService.
// It returns an error if any of the required dependencies are nil.
func NewTaskService(taskStore store.TaskStore, txRunner store.TxRunner, logger *slog.Logger) (TaskService, error) {
	if taskStore == nil {
		return nil, domain.NewValidationError("taskStore", "cannot be nil")
	}
	if txRunner == nil {
		return nil, domain.NewValidationError("txRunner", "cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		tasks:  taskStore,
		tx:     txRunner,
		now:    time.Now,
		logger: logger.With(slog.String("component", "task_service")),
	}, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	ownerID uuid.UUID,
	in domain.NewTaskInput,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := domain.NewTask(ownerID, in)
	if err != nil {
		log.Debug("task validation failed", slog.String("user_id", ownerID.String()))
		return nil, err
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, NewTaskServiceError("create_task", "failed to save task", err)
	}

	log.Info("task created",
		slog.String("task_id", task.ID.String()),
		slog.String("user_id", ownerID.String()))
	return task, nil
}

// ListTasks implements TaskService.ListTasks
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) (*domain.TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	filter = filter.Normalized()
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	tasks, total, err := s.tasks.List(ctx, ownerID, filter)
	if err != nil {
		log.Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	return &domain.TaskPage{
		Tasks:      tasks,
		TotalCount: total,
		Page:       filter.Page,
		TotalPages: domain.TotalPages(total, filter.Limit),
	}, nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.tasks.GetByID(ctx, id, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("task not found",
				slog.String("task_id", id.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, NewTaskServiceError("get_task", "failed to load task", err)
	}
	return task, nil
}

// UpdateTask implements TaskService.UpdateTask
// The read, merge and write happen in one transaction.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id, ownerID uuid.UUID,
	patch domain.TaskPatch,
) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Task
	err := s.tx.RunInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.tasks.WithTx(tx)

		task, err := txStore.GetByID(ctx, id, ownerID)
		if err != nil {
			return err
		}

		if err := task.Apply(patch, s.now()); err != nil {
			return err
		}

		if err := txStore.Update(ctx, task); err != nil {
			return err
		}
		updated = task
		return nil
	})

	if err != nil {
		switch {
		case store.IsNotFoundError(err):
			log.Debug("task not found for update",
				slog.String("task_id", id.String()),
				slog.String("user_id", ownerID.String()))
			return nil, store.ErrTaskNotFound
		case isValidationError(err):
			return nil, err
		default:
			log.Error("failed to update task",
				slog.String("error", err.Error()),
				slog.String("task_id", id.String()))
			return nil, NewTaskServiceError("update_task", "failed to update task", err)
		}
	}

	log.Info("task updated",
		slog.String("task_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return updated, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id, ownerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.tasks.Delete(ctx, id, ownerID); err != nil {
		if store.IsNotFoundError(err) {
			return store.ErrTaskNotFound
		}
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted",
		slog.String("task_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}

// Stats implements TaskService.Stats
func (s *taskServiceImpl) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.TaskStats, error) {
	stats, err := s.tasks.Stats(ctx, ownerID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute stats",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, NewTaskServiceError("stats", "failed to compute task statistics", err)
	}
	return stats, nil
}
