package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
	"github.com/phrazzld/taskboard-api/internal/platform/postgres"
	"github.com/phrazzld/taskboard-api/internal/store"
	"github.com/phrazzld/taskboard-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// createTestUser inserts a user through the store inside tx.
func createTestUser(t *testing.T, tx *sql.Tx, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Test User", email, "Password123")
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil).Create(context.Background(), user))
	return user
}

func TestUserStore_Integration(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, bcrypt.MinCost, nil)

		user, err := domain.NewUser("Alice", "Alice@Example.com", "Password123")
		require.NoError(t, err)
		require.NoError(t, users.Create(ctx, user))
		assert.Empty(t, user.Password, "plaintext is cleared after hashing")
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte("Password123")))

		byEmail, err := users.GetByEmail(ctx, "  ALICE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		dup, err := domain.NewUser("Alice Again", "alice@example.com", "Password123")
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), store.ErrEmailExists)

		name := "Alice Cooper"
		require.NoError(t, byEmail.Apply(domain.UserPatch{Name: &name}, time.Now()))
		require.NoError(t, users.Update(ctx, byEmail))

		reloaded, err := users.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alice Cooper", reloaded.Name)

		_, err = users.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestTaskStore_Integration_OwnerScoping(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := createTestUser(t, tx, fmt.Sprintf("owner-%s@example.com", uuid.NewString()[:8]))
		other := createTestUser(t, tx, fmt.Sprintf("other-%s@example.com", uuid.NewString()[:8]))
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		task, err := domain.NewTask(owner.ID, domain.NewTaskInput{Title: "Private"})
		require.NoError(t, err)
		require.NoError(t, tasks.Create(ctx, task))

		_, err = tasks.GetByID(ctx, task.ID, other.ID)
		assert.ErrorIs(t, err, store.ErrTaskNotFound)

		task.UserID = other.ID
		assert.ErrorIs(t, tasks.Update(ctx, task), store.ErrTaskNotFound)
		assert.ErrorIs(t, tasks.Delete(ctx, task.ID, other.ID), store.ErrTaskNotFound)

		listed, total, err := tasks.List(ctx, other.ID, domain.TaskFilter{})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, listed)

		stillThere, err := tasks.GetByID(ctx, task.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Private", stillThere.Title)
	})
}

func TestTaskStore_Integration_ListAndStats(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := createTestUser(t, tx, fmt.Sprintf("lister-%s@example.com", uuid.NewString()[:8]))
		tasks := postgres.NewPostgresTaskStore(tx, nil)

		oat := "Oat milk"
		inputs := []domain.NewTaskInput{
			{Title: "Buy milk", Description: &oat, Priority: domain.TaskPriorityHigh},
			{Title: "Write 100% report", Status: domain.TaskStatusInProgress, Priority: domain.TaskPriorityHigh},
			{Title: "Walk dog", Status: domain.TaskStatusCompleted, Priority: domain.TaskPriorityLow},
		}
		for _, in := range inputs {
			task, err := domain.NewTask(owner.ID, in)
			require.NoError(t, err)
			require.NoError(t, tasks.Create(ctx, task))
		}

		high := domain.TaskPriorityHigh
		listed, total, err := tasks.List(ctx, owner.ID, domain.TaskFilter{Priority: &high})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, listed, 2)

		listed, total, err = tasks.List(ctx, owner.ID, domain.TaskFilter{Search: "OAT"})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Equal(t, "Buy milk", listed[0].Title)

		_, total, err = tasks.List(ctx, owner.ID, domain.TaskFilter{Search: "%"})
		require.NoError(t, err)
		assert.Equal(t, 1, total, "wildcards in the search term match literally")

		listed, total, err = tasks.List(ctx, owner.ID, domain.TaskFilter{
			Page: 2, Limit: 2, SortBy: domain.SortByTitle, SortOrder: domain.SortAsc,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		require.Len(t, listed, 1)
		assert.Equal(t, "Write 100% report", listed[0].Title)

		stats, err := tasks.Stats(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStats{Total: 3, Pending: 1, InProgress: 1, Completed: 1, HighPriority: 2}, *stats)
	})
}
