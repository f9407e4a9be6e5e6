package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/phrazzld/todo-api/internal/domain"
)

// Sort directions accepted by ListTasksParams. Anything else silently
// falls back to ascending.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// DefaultListLimit is applied when no limit (or a non-positive limit)
// is requested.
const DefaultListLimit = 10

// MaxListLimit caps the page size of list queries.
const MaxListLimit = 100

// TaskSortFields lists the request-level field names accepted for sortBy,
// in the order they are reported to clients on validation failure.
var TaskSortFields = []string{"dueDate", "createdAt", "updatedAt", "priority", "status", "title"}

// taskSortColumns maps request-level sort field names to table columns.
var taskSortColumns = map[string]string{
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"priority":  "priority",
	"status":    "status",
	"title":     "title",
}

// InvalidSortFieldError is returned by ListTasksParams.Normalize when the
// requested sortBy is not in the allow-list.
type InvalidSortFieldError struct {
	Field string
}

func (e *InvalidSortFieldError) Error() string {
	return fmt.Sprintf("sortBy must be one of: %s", strings.Join(TaskSortFields, ", "))
}

// ListTasksParams carries the filter, sort and pagination inputs of a list
// query. The zero value lists the first page of active tasks in id order.
type ListTasksParams struct {
	Status         *domain.TaskStatus
	Priority       *domain.TaskPriority
	Search         string
	IncludeDeleted bool
	SortBy         string
	SortOrder      string
	Cursor         *int64
	Limit          int
}

// Normalize clamps the limit to [1, MaxListLimit], resolves the sort
// direction and validates the sort field. It must be called before the
// params are handed to a store.
func (p *ListTasksParams) Normalize() error {
	if p.Limit > MaxListLimit {
		p.Limit = MaxListLimit
	}
	if p.Limit < 1 {
		p.Limit = DefaultListLimit
	}

	if strings.EqualFold(p.SortOrder, SortDesc) {
		p.SortOrder = SortDesc
	} else {
		p.SortOrder = SortAsc
	}

	if p.SortBy == "" || p.SortBy == "id" {
		p.SortBy = ""
		return nil
	}
	if _, ok := taskSortColumns[p.SortBy]; !ok {
		return &InvalidSortFieldError{Field: p.SortBy}
	}
	return nil
}

// SortColumn returns the table column for the normalized sort field, or ""
// when sorting by id.
func (p *ListTasksParams) SortColumn() string {
	return taskSortColumns[p.SortBy]
}

// TaskPage is one page of a cursor-paginated list query.
type TaskPage struct {
	Tasks       []*domain.Task
	HasNextPage bool
	NextCursor  *int64
	Limit       int
}

// TaskStore defines the interface for task persistence. Every operation is
// scoped to the owning user; a task that exists but belongs to someone else
// behaves exactly like a missing one.
type TaskStore interface {
	// Create inserts a new task and fills in its assigned ID and timestamps.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves an active (non-deleted) task owned by userID.
	// Returns ErrTaskNotFound otherwise.
	GetByID(ctx context.Context, userID, id int64) (*domain.Task, error)

	// List returns a filtered, sorted, cursor-paginated page of tasks.
	// Params must be normalized by the caller.
	List(ctx context.Context, userID int64, params ListTasksParams) (*TaskPage, error)

	// Update replaces the mutable fields of an active task owned by
	// task.UserID and stamps UpdatedAt. Returns ErrTaskNotFound if the task
	// is missing, deleted, or owned by someone else.
	Update(ctx context.Context, task *domain.Task) error

	// SoftDelete marks an active task deleted and stamps UpdatedAt.
	// Deleting an already-deleted task returns ErrTaskNotFound.
	SoftDelete(ctx context.Context, userID, id int64) error

	// Restore clears DeletedAt on a currently soft-deleted task and stamps
	// UpdatedAt. Returns ErrTaskNotFound if the task is not soft-deleted.
	Restore(ctx context.Context, userID, id int64) error

	// BulkUpdate applies a status change and/or soft-delete to every id in
	// one transaction. If any id does not resolve to an active task owned by
	// userID, nothing is mutated and a *BulkTasksMissingError names the
	// offending ids. Returns the number of updated tasks.
	BulkUpdate(ctx context.Context, userID int64, ids []int64, status *domain.TaskStatus, softDelete bool) (int, error)

	// WithTx returns a TaskStore bound to the given transaction.
	WithTx(tx *sql.Tx) TaskStore
}
