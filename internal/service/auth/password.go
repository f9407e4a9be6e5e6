package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// PBKDF2 parameters. These match the hashes already present in existing
// databases and must not change without a migration path.
const (
	saltLength = 16
	keyLength  = 32
	iterations = 10000
)

// PasswordHasher derives a storable hash from a plaintext password.
type PasswordHasher interface {
	Hash(password string) (string, error)
}

// PasswordVerifier compares a stored hash with a plaintext candidate.
// Returns nil on success, or an error on failure (e.g. mismatch).
type PasswordVerifier interface {
	Compare(hash, password string) error
}

// PBKDF2Hasher implements PasswordHasher and PasswordVerifier using
// PBKDF2-SHA256 with a random 16-byte salt and a 32-byte derived key,
// stored as base64(salt || key).
type PBKDF2Hasher struct{}

// NewPBKDF2Hasher creates a new PBKDF2Hasher.
func NewPBKDF2Hasher() *PBKDF2Hasher {
	return &PBKDF2Hasher{}
}

var (
	_ PasswordHasher   = (*PBKDF2Hasher)(nil)
	_ PasswordVerifier = (*PBKDF2Hasher)(nil)
)

// Hash derives a salted key from the password and encodes salt || key.
func (h *PBKDF2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	buf := make([]byte, 0, saltLength+keyLength)
	buf = append(buf, salt...)
	buf = append(buf, key...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Compare re-derives the key with the stored salt and compares it to the
// stored key in constant time.
func (h *PBKDF2Hasher) Compare(hash, password string) error {
	raw, err := base64.StdEncoding.DecodeString(hash)
	if err != nil {
		return fmt.Errorf("%w: malformed password hash", ErrPasswordMismatch)
	}
	if len(raw) != saltLength+keyLength {
		return fmt.Errorf("%w: unexpected hash length %d", ErrPasswordMismatch, len(raw))
	}

	salt := raw[:saltLength]
	stored := raw[saltLength:]
	derived := pbkdf2.Key([]byte(password), salt, iterations, keyLength, sha256.New)

	if subtle.ConstantTimeCompare(stored, derived) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
