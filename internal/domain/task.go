package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
// The integer values are part of the wire format and must not be reordered.
type TaskStatus int

const (
	TaskStatusPending    TaskStatus = 0
	TaskStatusInProgress TaskStatus = 1
	TaskStatusCompleted  TaskStatus = 2
)

// IsValid reports whether the status is one of the recognized values.
func (s TaskStatus) IsValid() bool {
	return s >= TaskStatusPending && s <= TaskStatusCompleted
}

// String returns the canonical name of the status.
func (s TaskStatus) String() string {
	switch s {
	case TaskStatusPending:
		return "Pending"
	case TaskStatusInProgress:
		return "InProgress"
	case TaskStatusCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

// ParseTaskStatus parses a status from its integer wire value or its
// case-insensitive name. Clients historically sent either form.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		s := TaskStatus(n)
		return s, s.IsValid()
	}
	switch strings.ToLower(raw) {
	case "pending":
		return TaskStatusPending, true
	case "inprogress":
		return TaskStatusInProgress, true
	case "completed":
		return TaskStatusCompleted, true
	}
	return 0, false
}

// TaskPriority represents the urgency of a task.
// The integer values are part of the wire format and must not be reordered.
type TaskPriority int

const (
	TaskPriorityLow    TaskPriority = 0
	TaskPriorityMedium TaskPriority = 1
	TaskPriorityHigh   TaskPriority = 2
)

// IsValid reports whether the priority is one of the recognized values.
func (p TaskPriority) IsValid() bool {
	return p >= TaskPriorityLow && p <= TaskPriorityHigh
}

// String returns the canonical name of the priority.
func (p TaskPriority) String() string {
	switch p {
	case TaskPriorityLow:
		return "Low"
	case TaskPriorityMedium:
		return "Medium"
	case TaskPriorityHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// ParseTaskPriority parses a priority from its integer wire value or its
// case-insensitive name.
func ParseTaskPriority(raw string) (TaskPriority, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		p := TaskPriority(n)
		return p, p.IsValid()
	}
	switch strings.ToLower(raw) {
	case "low":
		return TaskPriorityLow, true
	case "medium":
		return TaskPriorityMedium, true
	case "high":
		return TaskPriorityHigh, true
	}
	return 0, false
}

// Task is a single task record owned by a user. Tags holds a serialized JSON
// array of strings; DeletedAt is non-nil for soft-deleted tasks.
type Task struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"dueDate"`
	Tags        string       `json:"tags"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	DeletedAt   *time.Time   `json:"deletedAt"`
	UserID      int64        `json:"userId"`
}

// IsDeleted reports whether the task is soft-deleted.
func (t *Task) IsDeleted() bool {
	return t.DeletedAt != nil
}

// ValidTagsJSON reports whether raw is a JSON array of non-blank strings.
// The empty string is not valid; callers substitute "[]" before persisting.
func ValidTagsJSON(raw string) bool {
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return false
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return false
		}
	}
	return true
}
