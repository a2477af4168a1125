package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memSessions struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *memSessions) Put(ctx context.Context, id, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = email
	return nil
}

func (s *memSessions) Alive(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.m[id]
	return ok, nil
}

func (s *memSessions) Drop(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

func newTestAuth(t *testing.T, ttl time.Duration) *Auth {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	return &Auth{
		Secret:            []byte("unit-test-secret"),
		AdminEmail:        "admin@example.com",
		AdminPasswordHash: string(hash),
		TTL:               ttl,
		Sessions:          &memSessions{m: map[string]string{}},
	}
}

func TestLoginAndVerify(t *testing.T) {
	a := newTestAuth(t, time.Hour)
	ctx := context.Background()

	token, expiresAt, err := a.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := a.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAuth(t, time.Hour)
	ctx := context.Background()

	_, _, err := a.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = a.Login(ctx, "intruder@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsGarbageAndForeignTokens(t *testing.T) {
	a := newTestAuth(t, time.Hour)
	ctx := context.Background()

	_, err := a.Verify(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token signed with a different secret
	other := newTestAuth(t, time.Hour)
	other.Secret = []byte("different-secret")
	token, _, err := other.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)
	_, err = a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a := newTestAuth(t, -time.Minute)
	ctx := context.Background()

	token, _, err := a.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)

	_, err = a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesSession(t *testing.T) {
	a := newTestAuth(t, time.Hour)
	ctx := context.Background()

	token, _, err := a.Login(ctx, "admin@example.com", "hunter2")
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, token))

	_, err = a.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}
