package mocks

import (
	"github.com/phrazzld/todo-api/internal/service/auth"
)

// MockPasswordHasher implements auth.PasswordHasher for testing
type MockPasswordHasher struct {
	// HashFn allows test cases to mock the Hash behavior
	HashFn func(password string) (string, error)

	// Default values used when HashFn isn't defined
	Hashed string
	Err    error
}

var _ auth.PasswordHasher = (*MockPasswordHasher)(nil)

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.Hashed != "" || m.Err != nil {
		return m.Hashed, m.Err
	}
	return "hashed:" + password, nil
}

// MockPasswordVerifier implements auth.PasswordVerifier for testing
type MockPasswordVerifier struct {
	// CompareFn allows test cases to mock the Compare behavior
	CompareFn func(hash, password string) error

	// Err is returned when CompareFn isn't defined
	Err error
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)

// Compare implements the auth.PasswordVerifier interface. The default
// behavior matches hashes produced by the default MockPasswordHasher.
func (m *MockPasswordVerifier) Compare(hash, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hash, password)
	}
	if m.Err != nil {
		return m.Err
	}
	if hash != "hashed:"+password {
		return auth.ErrPasswordMismatch
	}
	return nil
}
