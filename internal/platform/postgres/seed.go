package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
)

// Demo account created alongside the seed tasks.
const (
	seedUserName     = "Demo User"
	seedUserEmail    = "demo@example.com"
	seedUserPassword = "Password123"
)

// passwordHasher is the slice of the auth service the seeder needs.
type passwordHasher interface {
	Hash(password string) (string, error)
}

type seedFile struct {
	Tasks []seedTask `json:"tasks"`
}

type seedTask struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      int        `json:"status"`
	Priority    int        `json:"priority"`
	Tags        *string    `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	DeletedAt   *time.Time `json:"deletedAt"`
}

// Seed populates an empty database with a demo user and the tasks from the
// JSON seed file at path. It is a no-op when any task or user rows already
// exist, or when seeding is disabled with an empty path. A missing seed file
// is logged and skipped rather than treated as fatal.
func Seed(ctx context.Context, db *sql.DB, hasher passwordHasher, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	var taskCount, userCount int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&taskCount); err != nil {
		return fmt.Errorf("failed to count tasks: %w", err)
	}
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&userCount); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if taskCount > 0 || userCount > 0 {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("seed data file not found, skipping seeding", "path", path)
			return nil
		}
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var data seedFile
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(data.Tasks) == 0 {
		logger.Warn("no tasks found in seed data", "path", path)
		return nil
	}

	hash, err := hasher.Hash(seedUserPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed user password: %w", err)
	}

	now := time.Now().UTC()
	var userID int64
	err = db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, seedUserName, seedUserEmail, hash, now, now).Scan(&userID)
	if err != nil {
		return fmt.Errorf("failed to create seed user: %w", MapError(err))
	}

	for _, st := range data.Tasks {
		tags := "[]"
		if st.Tags != nil && domain.ValidTagsJSON(*st.Tags) {
			tags = *st.Tags
		}
		_, err := db.ExecContext(ctx, `
			INSERT INTO tasks (title, description, status, priority, due_date, tags, created_at, updated_at, deleted_at, user_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, st.Title, st.Description, st.Status, st.Priority, st.DueDate, tags, now, now, st.DeletedAt, userID)
		if err != nil {
			return fmt.Errorf("failed to insert seed task %q: %w", st.Title, MapError(err))
		}
	}

	logger.Info("seeded database with demo data",
		"tasks", len(data.Tasks),
		"demo_user", seedUserEmail)
	return nil
}
