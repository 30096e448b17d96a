package mocks

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/store"
)

// MockTaskStore is an in-memory store.TaskStore. Like the Postgres store it
// scopes every operation by owner, so tests exercise isolation for real.
// The Fn fields override individual methods.
type MockTaskStore struct {
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error)
	ListFn    func(ctx context.Context, ownerID uuid.UUID, filter domain.TaskFilter) ([]*domain.Task, int, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id, ownerID uuid.UUID) error
	StatsFn   func(ctx context.Context, ownerID uuid.UUID) (*domain.TaskStats, error)

	// Err, when set, is returned by every method without an override.
	Err error

	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

// NewMockTaskStore creates an empty in-memory task store.
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

// Len returns the number of stored tasks across all owners.
func (m *MockTaskStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

// Create implements store.TaskStore.
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[task.ID] = cloneTask(task)
	return nil
}

// GetByID implements store.TaskStore.
func (m *MockTaskStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id, ownerID)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return nil, store.ErrTaskNotFound
	}
	return cloneTask(task), nil
}

// List implements store.TaskStore.
func (m *MockTaskStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filter domain.TaskFilter,
) ([]*domain.Task, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, ownerID, filter)
	}
	if m.Err != nil {
		return nil, 0, m.Err
	}

	m.mu.Lock()
	var matched []*domain.Task
	for _, task := range m.tasks {
		if filter.Matches(ownerID, task) {
			matched = append(matched, cloneTask(task))
		}
	}
	m.mu.Unlock()

	sortTasks(matched, filter.SortBy, filter.SortOrder)

	total := len(matched)
	start := filter.Offset()
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Update implements store.TaskStore.
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return store.ErrTaskNotFound
	}
	updated := cloneTask(task)
	updated.CreatedAt = existing.CreatedAt
	m.tasks[task.ID] = updated
	return nil
}

// Delete implements store.TaskStore.
func (m *MockTaskStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id, ownerID)
	}
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok || task.UserID != ownerID {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// Stats implements store.TaskStore.
func (m *MockTaskStore) Stats(ctx context.Context, ownerID uuid.UUID) (*domain.TaskStats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx, ownerID)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	var owned []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == ownerID {
			owned = append(owned, task)
		}
	}
	stats := domain.TallyStats(owned)
	return &stats, nil
}

// WithTx implements store.TaskStore.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}

var _ store.TaskStore = (*MockTaskStore)(nil)

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

var (
	statusRank   = map[domain.TaskStatus]int{domain.TaskStatusPending: 1, domain.TaskStatusInProgress: 2, domain.TaskStatusCompleted: 3}
	priorityRank = map[domain.TaskPriority]int{domain.TaskPriorityLow: 1, domain.TaskPriorityMedium: 2, domain.TaskPriorityHigh: 3}
)

// sortTasks mirrors the SQL ordering: the chosen field, nulls last, then id.
func sortTasks(tasks []*domain.Task, by domain.TaskSortField, order domain.SortOrder) {
	desc := order == domain.SortDesc

	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		if by == domain.SortByDueDate && (a.DueDate == nil) != (b.DueDate == nil) {
			return a.DueDate != nil
		}

		c := compareTasks(a, b, by)
		if c == 0 {
			c = strings.Compare(a.ID.String(), b.ID.String())
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareTasks(a, b *domain.Task, by domain.TaskSortField) int {
	switch by {
	case domain.SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case domain.SortByDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return a.DueDate.Compare(*b.DueDate)
	case domain.SortByTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case domain.SortByStatus:
		return statusRank[a.Status] - statusRank[b.Status]
	case domain.SortByPriority:
		return priorityRank[a.Priority] - priorityRank[b.Priority]
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}
