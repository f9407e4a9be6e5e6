package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/mocks"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

const testUserID int64 = 1

// envelope mirrors the response envelope with raw data for per-test decoding.
type envelope struct {
	Success bool                     `json:"success"`
	Data    json.RawMessage          `json:"data"`
	Message string                   `json:"message"`
	Errors  []shared.ValidationError `json:"errors"`
}

// newTaskRouter mounts the task routes behind a stub auth middleware that
// injects claims for testUserID.
func newTaskRouter(ts store.TaskStore) http.Handler {
	h := NewTaskHandler(ts)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.ClaimsContextKey, &auth.Claims{
				UserID: testUserID,
				Name:   "Test User",
				Email:  "test@example.com",
			})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Get("/api/tasks", h.ListTasks)
	r.Post("/api/tasks", h.CreateTask)
	r.Patch("/api/tasks/bulk", h.BulkUpdate)
	r.Get("/api/tasks/{id}", h.GetTask)
	r.Put("/api/tasks/{id}", h.UpdateTask)
	r.Delete("/api/tasks/{id}", h.DeleteTask)
	r.Post("/api/tasks/{id}/restore", h.RestoreTask)
	return r
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func seedTask(ts *mocks.MockTaskStore, title string) *domain.Task {
	task := &domain.Task{
		Title:    title,
		Status:   domain.TaskStatusPending,
		Priority: domain.TaskPriorityMedium,
		Tags:     "[]",
		UserID:   testUserID,
	}
	_ = ts.Create(context.Background(), task)
	return task
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	t.Run("creates a task with defaults", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodPost, "/api/tasks", map[string]any{
			"title": "Write report",
		})

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "Task created successfully", env.Message)

		var task domain.Task
		require.NoError(t, json.Unmarshal(env.Data, &task))
		assert.Equal(t, "Write report", task.Title)
		assert.Equal(t, domain.TaskStatusPending, task.Status)
		assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
		assert.Equal(t, "[]", task.Tags)
		assert.Equal(t, testUserID, task.UserID)
		assert.NotZero(t, task.ID)
	})

	t.Run("missing title is rejected", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodPost, "/api/tasks", map[string]any{
			"description": "no title",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "Validation failed", env.Message)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "Title", env.Errors[0].Field)
		assert.Equal(t, "Title is required", env.Errors[0].Message)
	})

	t.Run("invalid tags JSON is rejected", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodPost, "/api/tasks", map[string]any{
			"title": "Tagged",
			"tags":  "work, home",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "Tags must be a valid JSON array", env.Errors[0].Message)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		req := httptest.NewRequest(http.MethodPost, "/api/tasks", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var env envelope
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
		assert.Equal(t, "Invalid request format", env.Message)
	})
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	t.Run("returns an owned task", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		task := seedTask(ts, "Find me")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks/1", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var got domain.Task
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, task.ID, got.ID)
		assert.Equal(t, "Find me", got.Title)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks/99", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", env.Message)
	})

	t.Run("another user's task is 404", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		other := &domain.Task{Title: "Not yours", Tags: "[]", UserID: 2}
		require.NoError(t, ts.Create(context.Background(), other))
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks/1", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", env.Message)
	})

	t.Run("non-numeric id is 400", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks/abc", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid task ID", env.Message)
	})
}

func TestListTasks(t *testing.T) {
	t.Parallel()

	t.Run("returns a page with pagination fields", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		for i := 0; i < 3; i++ {
			seedTask(ts, "Task")
		}
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks?limit=2", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		var page TaskListResponse
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page.Tasks, 2)
		assert.True(t, page.HasNextPage)
		require.NotNil(t, page.NextCursor)
		assert.Equal(t, int64(2), *page.NextCursor)
		assert.Equal(t, 2, page.Limit)
	})

	t.Run("cursor continues from the previous page", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		for i := 0; i < 3; i++ {
			seedTask(ts, "Task")
		}
		router := newTaskRouter(ts)

		_, env := doJSON(t, router, http.MethodGet, "/api/tasks?limit=2&cursor=2", nil)

		var page TaskListResponse
		require.NoError(t, json.Unmarshal(env.Data, &page))
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, int64(3), page.Tasks[0].ID)
		assert.False(t, page.HasNextPage)
		assert.Nil(t, page.NextCursor)
	})

	t.Run("invalid sort field is rejected with the allow-list", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks?sortBy=color", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "SortBy", env.Errors[0].Field)
		assert.Equal(t,
			"sortBy must be one of: dueDate, createdAt, updatedAt, priority, status, title",
			env.Errors[0].Message)
	})

	t.Run("invalid status filter is rejected", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodGet, "/api/tasks?status=done", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "Status", env.Errors[0].Field)
	})

	t.Run("status filter accepts names", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		filtered := domain.TaskStatusCompleted
		ts.ListFn = func(ctx context.Context, userID int64, params store.ListTasksParams) (*store.TaskPage, error) {
			require.NotNil(t, params.Status)
			assert.Equal(t, filtered, *params.Status)
			return &store.TaskPage{Limit: params.Limit}, nil
		}
		router := newTaskRouter(ts)

		rec, _ := doJSON(t, router, http.MethodGet, "/api/tasks?status=completed", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestUpdateTask(t *testing.T) {
	t.Parallel()

	t.Run("updates an owned task", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "Before")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodPut, "/api/tasks/1", map[string]any{
			"title":    "After",
			"status":   1,
			"priority": 2,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
		assert.Equal(t, "Task updated successfully", env.Message)
		assert.Equal(t, "After", ts.Tasks[1].Title)
		assert.Equal(t, domain.TaskStatusInProgress, ts.Tasks[1].Status)
	})

	t.Run("past due date is rejected", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "Dated")
		router := newTaskRouter(ts)

		yesterday := time.Now().UTC().Add(-48 * time.Hour)
		rec, env := doJSON(t, router, http.MethodPut, "/api/tasks/1", map[string]any{
			"title":    "Dated",
			"status":   0,
			"priority": 1,
			"dueDate":  yesterday.Format(time.RFC3339),
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "Due date cannot be in the past", env.Errors[0].Message)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodPut, "/api/tasks/5", map[string]any{
			"title":    "Ghost",
			"status":   0,
			"priority": 1,
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", env.Message)
	})
}

func TestDeleteAndRestoreTask(t *testing.T) {
	t.Parallel()

	t.Run("delete then restore round trip", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "Cycle")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodDelete, "/api/tasks/1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Task deleted successfully", env.Message)
		assert.True(t, ts.Tasks[1].IsDeleted())

		rec, env = doJSON(t, router, http.MethodPost, "/api/tasks/1/restore", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Task restored successfully", env.Message)
		assert.False(t, ts.Tasks[1].IsDeleted())
	})

	t.Run("deleting twice is 404", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "Once")
		router := newTaskRouter(ts)

		rec, _ := doJSON(t, router, http.MethodDelete, "/api/tasks/1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, env := doJSON(t, router, http.MethodDelete, "/api/tasks/1", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Task not found", env.Message)
	})

	t.Run("restoring an active task is 404", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "Active")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodPost, "/api/tasks/1/restore", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Deleted task not found", env.Message)
	})
}

func TestBulkUpdate(t *testing.T) {
	t.Parallel()

	t.Run("bulk delete reports the count", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "One")
		seedTask(ts, "Two")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodPatch, "/api/tasks/bulk", map[string]any{
			"taskIds": []int64{1, 2},
			"delete":  true,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2 tasks deleted successfully", env.Message)
		assert.True(t, ts.Tasks[1].IsDeleted())
		assert.True(t, ts.Tasks[2].IsDeleted())
	})

	t.Run("bulk status change reports the count", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "One")
		seedTask(ts, "Two")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodPatch, "/api/tasks/bulk", map[string]any{
			"taskIds": []int64{1, 2},
			"status":  2,
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2 tasks updated successfully", env.Message)
		assert.Equal(t, domain.TaskStatusCompleted, ts.Tasks[1].Status)
	})

	t.Run("partially missing batch is rejected whole", func(t *testing.T) {
		t.Parallel()
		ts := mocks.NewMockTaskStore()
		seedTask(ts, "Only one")
		router := newTaskRouter(ts)

		rec, env := doJSON(t, router, http.MethodPatch, "/api/tasks/bulk", map[string]any{
			"taskIds": []int64{1, 7, 8},
			"status":  2,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Tasks not found: 7, 8", env.Message)
		// Nothing was mutated.
		assert.Equal(t, domain.TaskStatusPending, ts.Tasks[1].Status)
	})

	t.Run("fully missing batch is 404", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodPatch, "/api/tasks/bulk", map[string]any{
			"taskIds": []int64{7, 8},
			"status":  2,
		})

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No tasks found to update", env.Message)
	})

	t.Run("empty id list is rejected", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodPatch, "/api/tasks/bulk", map[string]any{
			"taskIds": []int64{},
			"status":  2,
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NotEmpty(t, env.Errors)
		assert.Equal(t, "At least one task ID is required", env.Errors[0].Message)
	})

	t.Run("neither status nor delete is rejected", func(t *testing.T) {
		t.Parallel()
		router := newTaskRouter(mocks.NewMockTaskStore())

		rec, env := doJSON(t, router, http.MethodPatch, "/api/tasks/bulk", map[string]any{
			"taskIds": []int64{1},
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "Either Status or Delete must be specified", env.Errors[0].Message)
	})
}
