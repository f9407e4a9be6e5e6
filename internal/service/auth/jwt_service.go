package auth

import (
	"context"
	"time"

	"github.com/phrazzld/todo-api/internal/domain"
)

// JWTService defines operations for managing bearer authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed token embedding the user's identity
	// claims. Returns the token string and its expiry time.
	GenerateToken(ctx context.Context, user *domain.User) (string, time.Time, error)

	// ValidateToken verifies the signature and expiry of the provided token
	// and extracts its claims. Returns ErrExpiredToken or ErrInvalidToken
	// on failure.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the identity information carried by a bearer token.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID int64

	// Name and Email are the user's identity claims, echoed back by the
	// /auth/me endpoint without a database lookup.
	Name  string
	Email string

	// Standard registered claims
	IssuedAt  time.Time
	ExpiresAt time.Time
	ID        string
}
