package api

import (
	"time"

	"github.com/phrazzld/todo-api/internal/api/shared"
	"github.com/phrazzld/todo-api/internal/domain"
)

// Common request/response structures

// CreateTaskRequest defines the payload for creating a task.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    *int       `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        *string    `json:"tags"`
}

// Validate returns the field-level validation failures of the request.
// The messages are part of the API contract and mirror what clients
// already display.
func (r *CreateTaskRequest) Validate() []shared.ValidationError {
	var errs []shared.ValidationError
	errs = appendTitleErrors(errs, r.Title)
	errs = appendDescriptionErrors(errs, r.Description)
	if r.Priority != nil && !domain.TaskPriority(*r.Priority).IsValid() {
		errs = append(errs, shared.ValidationError{
			Field:   "Priority",
			Message: "Priority must be a valid value (Low, Medium, High)",
		})
	}
	errs = appendTagsErrors(errs, r.Tags)
	return errs
}

// UpdateTaskRequest defines the payload for a full task update.
type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      int        `json:"status"`
	Priority    int        `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Tags        *string    `json:"tags"`
}

// Validate returns the field-level validation failures of the request.
// Unlike create, updates validate the status and reject due dates before
// today (today itself is allowed; the comparison is date-only).
func (r *UpdateTaskRequest) Validate() []shared.ValidationError {
	var errs []shared.ValidationError
	errs = appendTitleErrors(errs, r.Title)
	errs = appendDescriptionErrors(errs, r.Description)
	if !domain.TaskStatus(r.Status).IsValid() {
		errs = append(errs, shared.ValidationError{
			Field:   "Status",
			Message: "Status must be a valid value (Pending, InProgress, Completed)",
		})
	}
	if !domain.TaskPriority(r.Priority).IsValid() {
		errs = append(errs, shared.ValidationError{
			Field:   "Priority",
			Message: "Priority must be a valid value (Low, Medium, High)",
		})
	}
	if r.DueDate != nil && beforeToday(*r.DueDate) {
		errs = append(errs, shared.ValidationError{
			Field:   "DueDate",
			Message: "Due date cannot be in the past",
		})
	}
	errs = appendTagsErrors(errs, r.Tags)
	return errs
}

// BulkUpdateRequest defines the payload for the bulk task update endpoint.
// At least one of Status or Delete must be present.
type BulkUpdateRequest struct {
	TaskIDs []int64 `json:"taskIds"`
	Status  *int    `json:"status"`
	Delete  *bool   `json:"delete"`
}

// Validate returns the field-level validation failures of the request.
func (r *BulkUpdateRequest) Validate() []shared.ValidationError {
	var errs []shared.ValidationError
	if len(r.TaskIDs) == 0 {
		errs = append(errs, shared.ValidationError{
			Field:   "TaskIds",
			Message: "At least one task ID is required",
		})
	}
	for _, id := range r.TaskIDs {
		if id <= 0 {
			errs = append(errs, shared.ValidationError{
				Field:   "TaskIds",
				Message: "Task IDs must be positive numbers",
			})
			break
		}
	}
	if r.Status != nil && !domain.TaskStatus(*r.Status).IsValid() {
		errs = append(errs, shared.ValidationError{
			Field:   "Status",
			Message: "Status must be a valid value (Pending, InProgress, Completed)",
		})
	}
	if r.Status == nil && r.Delete == nil {
		errs = append(errs, shared.ValidationError{
			Field:   "TaskIds",
			Message: "Either Status or Delete must be specified",
		})
	}
	return errs
}

func appendTitleErrors(errs []shared.ValidationError, title string) []shared.ValidationError {
	if title == "" {
		return append(errs, shared.ValidationError{
			Field:   "Title",
			Message: "Title is required",
		})
	}
	if len(title) > 200 {
		return append(errs, shared.ValidationError{
			Field:   "Title",
			Message: "Title must be less than 200 characters",
		})
	}
	return errs
}

func appendDescriptionErrors(errs []shared.ValidationError, description *string) []shared.ValidationError {
	if description != nil && len(*description) > 2000 {
		return append(errs, shared.ValidationError{
			Field:   "Description",
			Message: "Description must be less than 2000 characters",
		})
	}
	return errs
}

func appendTagsErrors(errs []shared.ValidationError, tags *string) []shared.ValidationError {
	if tags != nil && *tags != "" && !domain.ValidTagsJSON(*tags) {
		return append(errs, shared.ValidationError{
			Field:   "Tags",
			Message: "Tags must be a valid JSON array",
		})
	}
	return errs
}

// beforeToday reports whether t falls on a date before today in UTC.
func beforeToday(t time.Time) bool {
	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tu := t.UTC()
	due := time.Date(tu.Year(), tu.Month(), tu.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(today)
}

// TaskListResponse is the data payload of the list endpoint.
type TaskListResponse struct {
	Tasks       []*domain.Task `json:"tasks"`
	HasNextPage bool           `json:"hasNextPage"`
	NextCursor  *int64         `json:"nextCursor"`
	Limit       int            `json:"limit"`
}

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=100"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserInfo is the identity data echoed back by the auth endpoints.
type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
	User    UserInfo  `json:"user"`
}
