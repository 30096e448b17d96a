package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at, updated_at`

// sortExpressions maps API sort fields onto SQL. Enumerations sort by their
// logical order rather than alphabetically.
var sortExpressions = map[domain.TaskSortField]string{
	domain.SortByCreatedAt: "created_at",
	domain.SortByUpdatedAt: "updated_at",
	domain.SortByDueDate:   "due_date",
	domain.SortByTitle:     "LOWER(title)",
	domain.SortByStatus:    "CASE status WHEN 'pending' THEN 1 WHEN 'in-progress' THEN 2 WHEN 'completed' THEN 3 END",
	domain.SortByPriority:  "CASE priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 END",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// taskQueryBuilder accumulates a WHERE clause and its positional arguments.
// The owner predicate is always the first condition.
type taskQueryBuilder struct {
	conditions []string
	args       []any
}

func newTaskQueryBuilder(ownerID uuid.UUID) *taskQueryBuilder {
	b := &taskQueryBuilder{}
	b.add("user_id = %s", ownerID)
	return b
}

// add appends a condition whose single %s verb is replaced by the next
// placeholder. The placeholder may appear more than once via %[1]s.
func (b *taskQueryBuilder) add(condition string, arg any) {
	b.args = append(b.args, arg)
	placeholder := fmt.Sprintf("$%d", len(b.args))
	b.conditions = append(b.conditions, fmt.Sprintf(condition, placeholder))
}

func (b *taskQueryBuilder) applyFilter(f domain.TaskFilter) {
	if f.Status != nil {
		b.add("status = %s", string(*f.Status))
	}
	if f.Priority != nil {
		b.add("priority = %s", string(*f.Priority))
	}
	if f.Search != "" {
		b.add(`(title ILIKE %[1]s ESCAPE '\' OR description ILIKE %[1]s ESCAPE '\')`,
			"%"+escapeLike(f.Search)+"%")
	}
}

func (b *taskQueryBuilder) where() string {
	return " WHERE " + strings.Join(b.conditions, " AND ")
}

// buildTaskListQuery returns the paged SELECT for a normalized filter.
func buildTaskListQuery(ownerID uuid.UUID, f domain.TaskFilter) (string, []any) {
	b := newTaskQueryBuilder(ownerID)
	b.applyFilter(f)

	expr, ok := sortExpressions[f.SortBy]
	if !ok {
		expr = sortExpressions[domain.SortByCreatedAt]
	}
	dir := "DESC"
	if f.SortOrder == domain.SortAsc {
		dir = "ASC"
	}

	var q strings.Builder
	q.WriteString("SELECT ")
	q.WriteString(taskColumns)
	q.WriteString(" FROM tasks")
	q.WriteString(b.where())
	fmt.Fprintf(&q, " ORDER BY %s %s NULLS LAST, id %s", expr, dir, dir)

	args := append(b.args, f.Limit, f.Offset())
	fmt.Fprintf(&q, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return q.String(), args
}

// buildTaskCountQuery counts every task matching the filter, ignoring paging.
func buildTaskCountQuery(ownerID uuid.UUID, f domain.TaskFilter) (string, []any) {
	b := newTaskQueryBuilder(ownerID)
	b.applyFilter(f)
	return "SELECT COUNT(*) FROM tasks" + b.where(), b.args
}
