package domain

import (
	"strings"
	"time"
)

// User represents a registered user. Users are created through registration
// and are immutable afterwards; PasswordHash holds the base64-encoded
// salt-prefixed PBKDF2 digest and is never serialized.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser builds a User with a normalized (lower-cased) email. The caller is
// responsible for hashing the password and assigning the ID on insert.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Name:         name,
		Email:        strings.ToLower(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
