package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	conn   *sql.DB // underlying pool for opening transactions; nil when tx-bound
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection that should be
// initialized and managed by the caller.
func NewPostgresTaskStore(db *sql.DB, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:     db,
		conn:   db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTx returns a TaskStore bound to the provided transaction.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:     tx,
		logger: s.logger,
	}
}

const taskColumns = `id, title, description, status, priority, due_date, tags, created_at, updated_at, deleted_at, user_id`

// Create implements store.TaskStore.Create
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (title, description, status, priority, due_date, tags, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Tags == "" {
		task.Tags = "[]"
	}

	err := s.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		int(task.Status),
		int(task.Priority),
		task.DueDate,
		task.Tags,
		task.CreatedAt,
		task.UpdatedAt,
		task.UserID,
	).Scan(&task.ID)

	if err != nil {
		s.logger.Error("failed to create task", "error", err, "user_id", task.UserID)
		return fmt.Errorf("failed to create task: %w", MapError(err))
	}
	return nil
}

// GetByID implements store.TaskStore.GetByID
func (s *PostgresTaskStore) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
	`

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		s.logger.Error("failed to get task", "error", err, "task_id", id)
		return nil, fmt.Errorf("failed to get task: %w", MapError(err))
	}
	return task, nil
}

// List implements store.TaskStore.List. It fetches limit+1 rows to detect
// whether a further page exists; the extra row is trimmed before returning.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	userID int64,
	params store.ListTasksParams,
) (*store.TaskPage, error) {
	query, args := buildListTasksQuery(userID, params)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list tasks: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0, params.Limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Error("failed to scan task row", "error", err)
			return nil, fmt.Errorf("failed to scan task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}

	page := &store.TaskPage{Limit: params.Limit}
	if len(tasks) > params.Limit {
		tasks = tasks[:params.Limit]
		page.HasNextPage = true
		cursor := tasks[len(tasks)-1].ID
		page.NextCursor = &cursor
	}
	page.Tasks = tasks
	return page, nil
}

// Update implements store.TaskStore.Update
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, tags = $6, updated_at = $7
		WHERE id = $8 AND user_id = $9 AND deleted_at IS NULL
	`

	task.UpdatedAt = time.Now().UTC()
	if task.Tags == "" {
		task.Tags = "[]"
	}

	result, err := s.db.ExecContext(ctx, query,
		task.Title,
		task.Description,
		int(task.Status),
		int(task.Priority),
		task.DueDate,
		task.Tags,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		s.logger.Error("failed to update task", "error", err, "task_id", task.ID)
		return fmt.Errorf("failed to update task: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// SoftDelete implements store.TaskStore.SoftDelete
func (s *PostgresTaskStore) SoftDelete(ctx context.Context, userID, id int64) error {
	query := `
		UPDATE tasks
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		s.logger.Error("failed to soft delete task", "error", err, "task_id", id)
		return fmt.Errorf("failed to soft delete task: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// Restore implements store.TaskStore.Restore
func (s *PostgresTaskStore) Restore(ctx context.Context, userID, id int64) error {
	query := `
		UPDATE tasks
		SET deleted_at = NULL, updated_at = $1
		WHERE id = $2 AND user_id = $3 AND deleted_at IS NOT NULL
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id, userID)
	if err != nil {
		s.logger.Error("failed to restore task", "error", err, "task_id", id)
		return fmt.Errorf("failed to restore task: %w", MapError(err))
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

// BulkUpdate implements store.TaskStore.BulkUpdate. The whole batch is
// applied inside one transaction: the caller's active tasks are locked,
// the requested ids are reconciled against them, and either every matched
// task is updated or the batch is rejected.
func (s *PostgresTaskStore) BulkUpdate(
	ctx context.Context,
	userID int64,
	ids []int64,
	status *domain.TaskStatus,
	softDelete bool,
) (int, error) {
	if s.conn == nil {
		// Already transaction-bound; apply directly.
		return s.bulkApply(ctx, userID, ids, status, softDelete)
	}

	var updated int
	err := store.RunInTransaction(ctx, s.conn, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.WithTx(tx).(*PostgresTaskStore)
		n, err := txStore.bulkApply(ctx, userID, ids, status, softDelete)
		updated = n
		return err
	})
	return updated, err
}

func (s *PostgresTaskStore) bulkApply(
	ctx context.Context,
	userID int64,
	ids []int64,
	status *domain.TaskStatus,
	softDelete bool,
) (int, error) {
	lockQuery := `
		SELECT id FROM tasks
		WHERE user_id = $1 AND id = ANY($2) AND deleted_at IS NULL
		FOR UPDATE
	`

	rows, err := s.db.QueryContext(ctx, lockQuery, userID, ids)
	if err != nil {
		s.logger.Error("failed to lock tasks for bulk update", "error", err, "user_id", userID)
		return 0, fmt.Errorf("failed to resolve bulk update targets: %w", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	found := make(map[int64]bool, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan task id: %w", err)
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating task ids: %w", err)
	}

	if len(found) == 0 {
		return 0, store.ErrTaskNotFound
	}

	var missing []int64
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return 0, &store.BulkTasksMissingError{MissingIDs: missing}
	}

	now := time.Now().UTC()
	args := []any{now}
	set := "updated_at = $1"
	if status != nil {
		args = append(args, int(*status))
		set += fmt.Sprintf(", status = $%d", len(args))
	}
	if softDelete {
		args = append(args, now)
		set += fmt.Sprintf(", deleted_at = $%d", len(args))
	}

	args = append(args, userID)
	userArg := len(args)
	args = append(args, ids)
	idsArg := len(args)

	updateQuery := fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE user_id = $%d AND id = ANY($%d) AND deleted_at IS NULL
	`, set, userArg, idsArg)

	result, err := s.db.ExecContext(ctx, updateQuery, args...)
	if err != nil {
		s.logger.Error("failed to bulk update tasks", "error", err, "user_id", userID)
		return 0, fmt.Errorf("failed to bulk update tasks: %w", MapError(err))
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(updated), nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		task        domain.Task
		description sql.NullString
		dueDate     sql.NullTime
		deletedAt   sql.NullTime
		status      int
		priority    int
	)

	err := row.Scan(
		&task.ID,
		&task.Title,
		&description,
		&status,
		&priority,
		&dueDate,
		&task.Tags,
		&task.CreatedAt,
		&task.UpdatedAt,
		&deletedAt,
		&task.UserID,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if description.Valid {
		task.Description = &description.String
	}
	if dueDate.Valid {
		t := dueDate.Time
		task.DueDate = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		task.DeletedAt = &t
	}
	return &task, nil
}
