package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

func normalized(t *testing.T, p store.ListTasksParams) store.ListTasksParams {
	t.Helper()
	require.NoError(t, p.Normalize())
	return p
}

func TestBuildListTasksQuery(t *testing.T) {
	t.Parallel()

	t.Run("default query filters deleted and pages by id", func(t *testing.T) {
		t.Parallel()
		query, args := buildListTasksQuery(7, normalized(t, store.ListTasksParams{}))

		assert.Contains(t, query, "WHERE user_id = $1")
		assert.Contains(t, query, "AND deleted_at IS NULL")
		assert.Contains(t, query, "ORDER BY id ASC")
		assert.Contains(t, query, "LIMIT $2")
		// One extra row is fetched to detect whether a next page exists.
		assert.Equal(t, []any{int64(7), 11}, args)
	})

	t.Run("includeDeleted drops the deletion filter", func(t *testing.T) {
		t.Parallel()
		query, _ := buildListTasksQuery(7, normalized(t, store.ListTasksParams{IncludeDeleted: true}))
		assert.NotContains(t, query, "deleted_at IS NULL")
	})

	t.Run("status and priority filters", func(t *testing.T) {
		t.Parallel()
		status := domain.TaskStatusInProgress
		priority := domain.TaskPriorityHigh
		query, args := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Status:   &status,
			Priority: &priority,
		}))

		assert.Contains(t, query, "AND status = $2")
		assert.Contains(t, query, "AND priority = $3")
		assert.Equal(t, []any{int64(7), 1, 2, 11}, args)
	})

	t.Run("search matches title case-insensitively with escaped metacharacters", func(t *testing.T) {
		t.Parallel()
		query, args := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Search: "50%_done",
		}))

		assert.Contains(t, query, "AND title ILIKE $2")
		assert.Equal(t, `%50\%\_done%`, args[1])
	})

	t.Run("id cursor seeks directly on id", func(t *testing.T) {
		t.Parallel()
		cursor := int64(42)
		query, args := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Cursor: &cursor,
		}))

		assert.Contains(t, query, "AND id > $2")
		assert.Contains(t, query, "ORDER BY id ASC")
		assert.Equal(t, []any{int64(7), int64(42), 11}, args)
	})

	t.Run("descending id cursor flips the comparison", func(t *testing.T) {
		t.Parallel()
		cursor := int64(42)
		query, _ := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Cursor:    &cursor,
			SortOrder: store.SortDesc,
		}))

		assert.Contains(t, query, "AND id < $2")
		assert.Contains(t, query, "ORDER BY id DESC")
	})

	t.Run("sorted cursor seeks on the compound sort key", func(t *testing.T) {
		t.Parallel()
		cursor := int64(42)
		query, _ := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Cursor: &cursor,
			SortBy: "title",
		}))

		assert.Contains(t, query,
			"AND (title, id) > (SELECT title, id FROM tasks WHERE id = $2)")
		assert.Contains(t, query, "ORDER BY title ASC, id ASC")
	})

	t.Run("due date sort coalesces NULL to infinity", func(t *testing.T) {
		t.Parallel()
		cursor := int64(42)
		query, _ := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Cursor:    &cursor,
			SortBy:    "dueDate",
			SortOrder: store.SortDesc,
		}))

		assert.Contains(t, query,
			"ORDER BY COALESCE(due_date, 'infinity'::timestamptz) DESC, id DESC")
		assert.Contains(t, query,
			"AND (COALESCE(due_date, 'infinity'::timestamptz), id) < (SELECT COALESCE(due_date, 'infinity'::timestamptz), id FROM tasks WHERE id = $2)")
	})

	t.Run("limit placeholder is always last", func(t *testing.T) {
		t.Parallel()
		status := domain.TaskStatusPending
		cursor := int64(3)
		query, args := buildListTasksQuery(7, normalized(t, store.ListTasksParams{
			Status: &status,
			Search: "report",
			Cursor: &cursor,
			Limit:  25,
		}))

		assert.Contains(t, query, "LIMIT $5")
		assert.Equal(t, 26, args[len(args)-1])
	})
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `plain`, escapeLike("plain"))
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\temp`, escapeLike(`c:\temp`))
}
