package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/taskboard-api/internal/api/shared"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/service"
)

// TaskHandler handles task-related HTTP requests. The owner of every task
// operation is the authenticated user from the request context, never a
// client-supplied value.
type TaskHandler struct {
	tasks  service.TaskService
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(tasks service.TaskService, logger *slog.Logger) *TaskHandler {
	// ALLOW-PANIC: Constructor enforcing required dependency
	if tasks == nil {
		panic("tasks cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		tasks:  tasks,
		logger: logger.With(slog.String("component", "task_handler")),
	}
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	page, err := h.tasks.ListTasks(r.Context(), userID, filter)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve tasks")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", taskPageToResponse(page))
}

// GetStats handles GET /api/tasks/stats.
func (h *TaskHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	stats, err := h.tasks.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task statistics")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", stats)
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to retrieve task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "", TaskEnvelope{Task: taskToResponse(task)})
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	in, err := req.toInput()
	if err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID, in)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, "Task created successfully",
		TaskEnvelope{Task: taskToResponse(task)})
}

// UpdateTask handles PUT /api/tasks/{id}. Only the fields present in the body
// change.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		shared.RespondWithValidationError(w, r, err)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskID, userID, patch)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Task updated successfully",
		TaskEnvelope{Task: taskToResponse(task)})
}

// DeleteTask handles DELETE /api/tasks/{id}.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	taskID, ok := pathTaskID(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskID, userID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, "Task deleted successfully", nil)
}

// toInput validates the request and converts it to a domain input.
func (req CreateTaskRequest) toInput() (domain.NewTaskInput, error) {
	req.Title = strings.TrimSpace(req.Title)

	verr := requestValidationErrors(req)

	in := domain.NewTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
	}

	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		due, ok := parseDueDate(*req.DueDate)
		if ok {
			in.DueDate = &due
		} else {
			verr.Add("dueDate", "Invalid due date")
		}
	}

	return in, verr.OrNil()
}

// toPatch validates the request and converts it to a domain patch.
func (req UpdateTaskRequest) toPatch() (domain.TaskPatch, error) {
	verr := requestValidationErrors(req)

	patch := domain.TaskPatch{Title: req.Title}

	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		patch.Priority = &priority
	}

	if req.Description.Set {
		if req.Description.Value == nil {
			patch.ClearDescription = true
		} else {
			patch.Description = req.Description.Value
		}
	}

	if req.DueDate.IsNullOrEmpty() {
		patch.ClearDueDate = true
	} else if req.DueDate.Set {
		due, ok := parseDueDate(*req.DueDate.Value)
		if ok {
			patch.DueDate = &due
		} else {
			verr.Add("dueDate", "Invalid due date")
		}
	}

	return patch, verr.OrNil()
}
