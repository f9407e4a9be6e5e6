package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/todo-api/internal/api/middleware"
	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
	"github.com/phrazzld/todo-api/internal/store"
)

// TaskHandler handles task-related API requests. Every operation is scoped
// to the authenticated caller taken from the request context.
type TaskHandler struct {
	taskStore store.TaskStore
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskStore store.TaskStore) *TaskHandler {
	return &TaskHandler{
		taskStore: taskStore,
	}
}

// ListTasks handles GET /api/tasks.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	params, errs := parseListParams(r)
	if len(errs) > 0 {
		shared.RespondWithValidationErrors(w, r, errs)
		return
	}

	if err := params.Normalize(); err != nil {
		var sortErr *store.InvalidSortFieldError
		if errors.As(err, &sortErr) {
			shared.RespondWithValidationErrors(w, r, []shared.ValidationError{
				{Field: "SortBy", Message: sortErr.Error()},
			})
			return
		}
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid list parameters")
		return
	}

	page, err := h.taskStore.List(r.Context(), userID, params)
	if err != nil {
		slog.Error("failed to list tasks", "error", err, "user_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to retrieve tasks")
		return
	}

	slog.Debug("retrieved tasks",
		"count", len(page.Tasks),
		"user_id", userID,
		"has_next_page", page.HasNextPage)

	shared.RespondWithSuccess(w, r, http.StatusOK, TaskListResponse{
		Tasks:       page.Tasks,
		HasNextPage: page.HasNextPage,
		NextCursor:  page.NextCursor,
		Limit:       page.Limit,
	}, "")
}

// GetTask handles GET /api/tasks/{id}.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskStore.GetByID(r.Context(), userID, id)
	if err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("failed to get task", "error", err, "task_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to retrieve task")
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, task, "")
}

// CreateTask handles POST /api/tasks.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		shared.RespondWithValidationErrors(w, r, errs)
		return
	}

	priority := domain.TaskPriorityMedium
	if req.Priority != nil {
		priority = domain.TaskPriority(*req.Priority)
	}
	tags := "[]"
	if req.Tags != nil && *req.Tags != "" {
		tags = *req.Tags
	}

	task := &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatusPending,
		Priority:    priority,
		DueDate:     req.DueDate,
		Tags:        tags,
		UserID:      userID,
	}

	if err := h.taskStore.Create(r.Context(), task); err != nil {
		slog.Error("failed to create task", "error", err, "user_id", userID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create task")
		return
	}

	slog.Info("created task", "task_id", task.ID, "user_id", userID)
	shared.RespondWithSuccess(w, r, http.StatusCreated, task, "Task created successfully")
}

// UpdateTask handles PUT /api/tasks/{id}. All mutable fields are replaced.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		shared.RespondWithValidationErrors(w, r, errs)
		return
	}

	tags := "[]"
	if req.Tags != nil && *req.Tags != "" {
		tags = *req.Tags
	}

	task := &domain.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.TaskStatus(req.Status),
		Priority:    domain.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		Tags:        tags,
		UserID:      userID,
	}

	if err := h.taskStore.Update(r.Context(), task); err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("failed to update task", "error", err, "task_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to update task")
		return
	}

	slog.Info("updated task", "task_id", id, "user_id", userID)
	shared.RespondWithSuccess(w, r, http.StatusOK, nil, "Task updated successfully")
}

// DeleteTask handles DELETE /api/tasks/{id} (soft delete).
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.SoftDelete(r.Context(), userID, id); err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
			return
		}
		slog.Error("failed to delete task", "error", err, "task_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to delete task")
		return
	}

	slog.Info("soft deleted task", "task_id", id, "user_id", userID)
	shared.RespondWithSuccess(w, r, http.StatusOK, nil, "Task deleted successfully")
}

// RestoreTask handles POST /api/tasks/{id}/restore.
func (h *TaskHandler) RestoreTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}
	id, ok := parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskStore.Restore(r.Context(), userID, id); err != nil {
		if store.IsNotFoundError(err) {
			shared.RespondWithError(w, r, http.StatusNotFound, "Deleted task not found")
			return
		}
		slog.Error("failed to restore task", "error", err, "task_id", id)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to restore task")
		return
	}

	slog.Info("restored task", "task_id", id, "user_id", userID)
	shared.RespondWithSuccess(w, r, http.StatusOK, nil, "Task restored successfully")
}

// BulkUpdate handles PATCH /api/tasks/bulk. The batch either applies to
// every requested task or is rejected naming the unresolved ids.
func (h *TaskHandler) BulkUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req BulkUpdateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		shared.RespondWithValidationErrors(w, r, errs)
		return
	}

	var status *domain.TaskStatus
	if req.Status != nil {
		s := domain.TaskStatus(*req.Status)
		status = &s
	}
	softDelete := req.Delete != nil && *req.Delete

	updated, err := h.taskStore.BulkUpdate(r.Context(), userID, req.TaskIDs, status, softDelete)
	if err != nil {
		var missingErr *store.BulkTasksMissingError
		switch {
		case errors.As(err, &missingErr):
			shared.RespondWithError(w, r, http.StatusBadRequest,
				"Tasks not found: "+joinIDs(missingErr.MissingIDs))
		case store.IsNotFoundError(err):
			shared.RespondWithError(w, r, http.StatusNotFound, "No tasks found to update")
		default:
			slog.Error("failed to perform bulk update", "error", err, "user_id", userID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to perform bulk update")
		}
		return
	}

	action := "updated"
	if softDelete {
		action = "deleted"
	}
	slog.Info("bulk updated tasks", "action", action, "count", updated, "user_id", userID)
	shared.RespondWithSuccess(w, r, http.StatusOK, nil,
		fmt.Sprintf("%d tasks %s successfully", updated, action))
}

// callerID extracts the authenticated user's id, responding 401 if the
// auth middleware did not run.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	claims, ok := middleware.GetClaims(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User not found in context")
		return 0, false
	}
	return claims.UserID, true
}

// parseTaskID parses the {id} route parameter, responding 400 on anything
// that is not a positive integer.
func parseTaskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return 0, false
	}
	return id, true
}

// parseListParams translates the list query string into ListTasksParams,
// collecting field errors for unparseable values.
func parseListParams(r *http.Request) (store.ListTasksParams, []shared.ValidationError) {
	q := r.URL.Query()
	var params store.ListTasksParams
	var errs []shared.ValidationError

	if raw := q.Get("status"); raw != "" {
		status, ok := domain.ParseTaskStatus(raw)
		if !ok {
			errs = append(errs, shared.ValidationError{
				Field:   "Status",
				Message: "Status must be a valid value (Pending, InProgress, Completed)",
			})
		} else {
			params.Status = &status
		}
	}

	if raw := q.Get("priority"); raw != "" {
		priority, ok := domain.ParseTaskPriority(raw)
		if !ok {
			errs = append(errs, shared.ValidationError{
				Field:   "Priority",
				Message: "Priority must be a valid value (Low, Medium, High)",
			})
		} else {
			params.Priority = &priority
		}
	}

	params.Search = q.Get("search")
	params.SortBy = q.Get("sortBy")
	params.SortOrder = q.Get("sortOrder")

	if raw := q.Get("includeDeleted"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, shared.ValidationError{
				Field:   "IncludeDeleted",
				Message: "IncludeDeleted must be a boolean",
			})
		} else {
			params.IncludeDeleted = v
		}
	}

	if raw := q.Get("cursor"); raw != "" {
		cursor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, shared.ValidationError{
				Field:   "Cursor",
				Message: "Cursor must be an integer",
			})
		} else {
			params.Cursor = &cursor
		}
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, shared.ValidationError{
				Field:   "Limit",
				Message: "Limit must be an integer",
			})
		} else {
			params.Limit = limit
		}
	}

	return params, errs
}

func joinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ", ")
}
