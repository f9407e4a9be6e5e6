package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/todo-api/internal/config"
	"github.com/phrazzld/todo-api/internal/domain"
)

const testSecret = "test-jwt-secret-that-is-32-chars-long"

// newFixedClockService builds a service whose clock is pinned to now, with
// no clock skew allowance so expiry tests are exact.
func newFixedClockService(secret string, lifetime time.Duration, now func() time.Time) JWTService {
	return &hmacJWTService{
		signingKey:    []byte(secret),
		tokenLifetime: lifetime,
		timeFunc:      now,
		clockSkew:     0,
	}
}

func testUser() *domain.User {
	return &domain.User{
		ID:    42,
		Name:  "Test User",
		Email: "test@example.com",
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()
		_, err := NewJWTService(config.AuthConfig{
			JWTSecret:            "too-short",
			TokenLifetimeMinutes: 60,
		})
		require.Error(t, err)
	})

	t.Run("accepts a 32 character secret", func(t *testing.T) {
		t.Parallel()
		svc, err := NewJWTService(config.AuthConfig{
			JWTSecret:            testSecret,
			TokenLifetimeMinutes: 60,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 7 * 24 * time.Hour
	svc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
	user := testUser()

	token, expires, err := svc.GenerateToken(context.Background(), user)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, fixedTime.Add(lifetime), expires)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Name, claims.Name)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := time.Hour
	user := testUser()

	tests := []struct {
		name    string
		setup   func(t *testing.T) (JWTService, string)
		wantErr error
	}{
		{
			name: "valid token",
			setup: func(t *testing.T) (JWTService, string) {
				svc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
				token, _, err := svc.GenerateToken(context.Background(), user)
				require.NoError(t, err)
				return svc, token
			},
			wantErr: nil,
		},
		{
			name: "expired token",
			setup: func(t *testing.T) (JWTService, string) {
				genSvc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
				token, _, err := genSvc.GenerateToken(context.Background(), user)
				require.NoError(t, err)

				// Validate two hours later, well past the one hour lifetime.
				valSvc := newFixedClockService(testSecret, lifetime, func() time.Time {
					return fixedTime.Add(2 * time.Hour)
				})
				return valSvc, token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong signing key",
			setup: func(t *testing.T) (JWTService, string) {
				genSvc := newFixedClockService("another-secret-that-is-32-chars-ok", lifetime, func() time.Time { return fixedTime })
				token, _, err := genSvc.GenerateToken(context.Background(), user)
				require.NoError(t, err)

				valSvc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
				return valSvc, token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "garbage token",
			setup: func(t *testing.T) (JWTService, string) {
				svc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
				return svc, "not.a.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "tampered token",
			setup: func(t *testing.T) (JWTService, string) {
				svc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
				token, _, err := svc.GenerateToken(context.Background(), user)
				require.NoError(t, err)
				return svc, token + "x"
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tc.setup(t)
			claims, err := svc.ValidateToken(context.Background(), token)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, user.ID, claims.UserID)
		})
	}
}

func TestClockSkewTolerance(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := time.Hour
	user := testUser()

	genSvc := newFixedClockService(testSecret, lifetime, func() time.Time { return fixedTime })
	token, _, err := genSvc.GenerateToken(context.Background(), user)
	require.NoError(t, err)

	// A validator whose clock runs one minute past expiry, but with the
	// production two minute skew allowance, still accepts the token.
	valSvc := &hmacJWTService{
		signingKey:    []byte(testSecret),
		tokenLifetime: lifetime,
		timeFunc:      func() time.Time { return fixedTime.Add(lifetime + time.Minute) },
		clockSkew:     2 * time.Minute,
	}

	_, err = valSvc.ValidateToken(context.Background(), token)
	assert.NoError(t, err)
}
