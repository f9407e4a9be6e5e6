package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/platform/postgres"
	"github.com/phrazzld/todo-api/internal/service/auth"
	"github.com/phrazzld/todo-api/internal/store"
)

// application holds the shared dependencies of the server. Everything the
// handlers need is wired here once, at startup.
type application struct {
	config           *config.Config
	logger           *slog.Logger
	db               *sql.DB
	taskStore        store.TaskStore
	userStore        store.UserStore
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
}

// newApplication wires the service layer on top of an open database handle.
func newApplication(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	hasher := auth.NewPBKDF2Hasher()

	return &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		taskStore:        postgres.NewPostgresTaskStore(db, logger),
		userStore:        postgres.NewPostgresUserStore(db, logger),
		jwtService:       jwtService,
		passwordHasher:   hasher,
		passwordVerifier: hasher,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	closeDatabase(app.db)
}
