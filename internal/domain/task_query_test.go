package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTaskFilterNormalized(t *testing.T) {
	t.Parallel()

	f := TaskFilter{Search: "  milk "}.Normalized()

	assert.Equal(t, "milk", f.Search)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 10, f.Limit)
	assert.Equal(t, SortByCreatedAt, f.SortBy)
	assert.Equal(t, SortDesc, f.SortOrder)
	assert.Equal(t, 0, f.Offset())
	assert.NoError(t, f.Validate())
}

func TestTaskFilterOffset(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 20, TaskFilter{Page: 3, Limit: 10}.Offset())
	assert.Equal(t, 5, TaskFilter{Page: 2, Limit: 5}.Offset())
}

func TestTaskFilterValidate(t *testing.T) {
	t.Parallel()

	bogusStatus := TaskStatus("archived")
	bogusPriority := TaskPriority("urgent")

	tests := []struct {
		name      string
		filter    TaskFilter
		wantField string
	}{
		{"negative page", TaskFilter{Page: -1}, "page"},
		{"limit too large", TaskFilter{Limit: 101}, "limit"},
		{"negative limit", TaskFilter{Limit: -5}, "limit"},
		{"unknown sort", TaskFilter{SortBy: "password"}, "sortBy"},
		{"unknown order", TaskFilter{SortOrder: "sideways"}, "sortOrder"},
		{"unknown status", TaskFilter{Status: &bogusStatus}, "status"},
		{"unknown priority", TaskFilter{Priority: &bogusPriority}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.filter.Normalized().Validate()
			var verr *ValidationError
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tt.wantField, verr.Fields[0].Field)
			}
		})
	}
}

func TestTaskFilterMatches(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	other := uuid.New()
	desc := "Remember the Oat milk"
	task := &Task{
		UserID:      owner,
		Title:       "Groceries",
		Description: &desc,
		Status:      TaskStatusInProgress,
		Priority:    TaskPriorityHigh,
	}
	high := TaskPriorityHigh
	low := TaskPriorityLow
	done := TaskStatusCompleted

	assert.True(t, TaskFilter{}.Matches(owner, task))
	assert.False(t, TaskFilter{}.Matches(other, task), "other owners never match")
	assert.True(t, TaskFilter{Search: "OAT"}.Matches(owner, task), "search is case-insensitive on description")
	assert.True(t, TaskFilter{Search: "grocer"}.Matches(owner, task), "search matches title")
	assert.False(t, TaskFilter{Search: "bread"}.Matches(owner, task))
	assert.True(t, TaskFilter{Priority: &high}.Matches(owner, task))
	assert.False(t, TaskFilter{Priority: &low}.Matches(owner, task))
	assert.False(t, TaskFilter{Status: &done}.Matches(owner, task))
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total, limit, want int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 5, 5},
		{26, 5, 6},
		{3, 1, 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TotalPages(tt.total, tt.limit), "total=%d limit=%d", tt.total, tt.limit)
	}
}

func TestTallyStats(t *testing.T) {
	t.Parallel()

	tasks := []*Task{
		{Status: TaskStatusPending, Priority: TaskPriorityHigh},
		{Status: TaskStatusInProgress, Priority: TaskPriorityMedium},
		{Status: TaskStatusCompleted, Priority: TaskPriorityHigh},
	}

	stats := TallyStats(tasks)

	assert.Equal(t, TaskStats{Total: 3, Pending: 1, InProgress: 1, Completed: 1, HighPriority: 2}, stats)
	assert.LessOrEqual(t, stats.Pending+stats.InProgress+stats.Completed, stats.Total)
	assert.Equal(t, TaskStats{}, TallyStats(nil))
}
