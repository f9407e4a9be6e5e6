package mocks

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// MockTaskStore implements store.TaskStore for testing
type MockTaskStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, task *domain.Task) error
	GetByIDFn    func(ctx context.Context, userID, id int64) (*domain.Task, error)
	ListFn       func(ctx context.Context, userID int64, params store.ListTasksParams) (*store.TaskPage, error)
	UpdateFn     func(ctx context.Context, task *domain.Task) error
	SoftDeleteFn func(ctx context.Context, userID, id int64) error
	RestoreFn    func(ctx context.Context, userID, id int64) error
	BulkUpdateFn func(ctx context.Context, userID int64, ids []int64, status *domain.TaskStatus, softDelete bool) (int, error)

	// Data for default implementation
	Tasks       map[int64]*domain.Task
	NextID      int64
	CreateError error
	ListError   error
}

// NewMockTaskStore creates a new mock store with initialized defaults
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{
		Tasks:  make(map[int64]*domain.Task),
		NextID: 1,
	}
}

var _ store.TaskStore = (*MockTaskStore)(nil)

// Create implements the store.TaskStore interface
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	now := time.Now().UTC()
	task.ID = m.NextID
	m.NextID++
	task.CreatedAt = now
	task.UpdatedAt = now
	m.Tasks[task.ID] = task
	return nil
}

// GetByID implements the store.TaskStore interface
func (m *MockTaskStore) GetByID(ctx context.Context, userID, id int64) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, userID, id)
	}

	task, exists := m.Tasks[id]
	if !exists || task.UserID != userID || task.IsDeleted() {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// List implements the store.TaskStore interface. The default implementation
// pages over the in-memory tasks in id order; filters other than the
// deletion flag are ignored.
func (m *MockTaskStore) List(ctx context.Context, userID int64, params store.ListTasksParams) (*store.TaskPage, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, userID, params)
	}

	if m.ListError != nil {
		return nil, m.ListError
	}

	var tasks []*domain.Task
	for _, task := range m.Tasks {
		if task.UserID != userID {
			continue
		}
		if task.IsDeleted() && !params.IncludeDeleted {
			continue
		}
		if params.Cursor != nil && task.ID <= *params.Cursor {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	page := &store.TaskPage{Tasks: tasks, Limit: params.Limit}
	if len(tasks) > params.Limit {
		page.Tasks = tasks[:params.Limit]
		page.HasNextPage = true
		last := page.Tasks[len(page.Tasks)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// Update implements the store.TaskStore interface
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	existing, exists := m.Tasks[task.ID]
	if !exists || existing.UserID != task.UserID || existing.IsDeleted() {
		return store.ErrTaskNotFound
	}

	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now().UTC()
	m.Tasks[task.ID] = task
	return nil
}

// SoftDelete implements the store.TaskStore interface
func (m *MockTaskStore) SoftDelete(ctx context.Context, userID, id int64) error {
	if m.SoftDeleteFn != nil {
		return m.SoftDeleteFn(ctx, userID, id)
	}

	task, exists := m.Tasks[id]
	if !exists || task.UserID != userID || task.IsDeleted() {
		return store.ErrTaskNotFound
	}

	now := time.Now().UTC()
	task.DeletedAt = &now
	task.UpdatedAt = now
	return nil
}

// Restore implements the store.TaskStore interface
func (m *MockTaskStore) Restore(ctx context.Context, userID, id int64) error {
	if m.RestoreFn != nil {
		return m.RestoreFn(ctx, userID, id)
	}

	task, exists := m.Tasks[id]
	if !exists || task.UserID != userID || !task.IsDeleted() {
		return store.ErrTaskNotFound
	}

	task.DeletedAt = nil
	task.UpdatedAt = time.Now().UTC()
	return nil
}

// BulkUpdate implements the store.TaskStore interface
func (m *MockTaskStore) BulkUpdate(ctx context.Context, userID int64, ids []int64, status *domain.TaskStatus, softDelete bool) (int, error) {
	if m.BulkUpdateFn != nil {
		return m.BulkUpdateFn(ctx, userID, ids, status, softDelete)
	}

	var found []*domain.Task
	var missing []int64
	seen := make(map[int64]bool)
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		task, exists := m.Tasks[id]
		if !exists || task.UserID != userID || task.IsDeleted() {
			missing = append(missing, id)
			continue
		}
		found = append(found, task)
	}

	if len(found) == 0 {
		return 0, store.ErrTaskNotFound
	}
	if len(missing) > 0 {
		return 0, &store.BulkTasksMissingError{MissingIDs: missing}
	}

	now := time.Now().UTC()
	for _, task := range found {
		if status != nil {
			task.Status = *status
		}
		if softDelete {
			task.DeletedAt = &now
		}
		task.UpdatedAt = now
	}
	return len(found), nil
}

// WithTx implements the store.TaskStore interface. Mocks have no
// transactions, so the same store is returned.
func (m *MockTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	return m
}
