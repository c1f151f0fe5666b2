package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/pkg/helpers"
)

type memSessionStore struct {
	mu   sync.Mutex
	sids map[string]string
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sids: map[string]string{}}
}

func (s *memSessionStore) Save(_ context.Context, userID, sessionID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sids[userID] = sessionID
	return nil
}

func (s *memSessionStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sid, ok := s.sids[userID]
	if !ok {
		return "", ErrSessionNotFound
	}
	return sid, nil
}

func (s *memSessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sids, userID)
	return nil
}

var _ SessionStore = (*memSessionStore)(nil)

func newTestSessions(repo *memRepo) *SessionManager {
	jwt := helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour)
	return NewSessionManager(repo, newMemSessionStore(), jwt, time.Hour, quietLogger())
}

func seedUser(t *testing.T, repo *memRepo, email string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword("s3cretpass")
	require.NoError(t, err)
	u := &entity.User{Email: email, PasswordHash: &hash}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestSessionIssueAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	u := seedUser(t, repo, "ada@example.com")
	sessions := newTestSessions(repo)

	pair, err := sessions.Issue(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	got, err := sessions.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Email, got.Email)
}

func TestSessionAuthenticateGarbageToken(t *testing.T) {
	sessions := newTestSessions(newMemRepo())
	_, err := sessions.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionRevokeKillsReplayedToken(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	u := seedUser(t, repo, "ada@example.com")
	sessions := newTestSessions(repo)

	pair, err := sessions.Issue(ctx, u)
	require.NoError(t, err)

	_, err = sessions.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, sessions.Revoke(ctx, u.ID))

	// same token string replayed after logout
	_, err = sessions.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionRefreshRotates(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	u := seedUser(t, repo, "ada@example.com")
	sessions := newTestSessions(repo)

	old, err := sessions.Issue(ctx, u)
	require.NoError(t, err)

	fresh, err := sessions.Refresh(ctx, old.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, old.AccessToken, fresh.AccessToken)

	// the pre-rotation access token is dead, the fresh one works
	_, err = sessions.Authenticate(ctx, old.AccessToken)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	got, err := sessions.Authenticate(ctx, fresh.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSessionRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	u := seedUser(t, repo, "ada@example.com")
	sessions := newTestSessions(repo)

	pair, err := sessions.Issue(ctx, u)
	require.NoError(t, err)

	_, err = sessions.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestSessionRehydrationFailureFallsBackToAnonymous(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo()
	u := seedUser(t, repo, "ada@example.com")
	sessions := newTestSessions(repo)

	pair, err := sessions.Issue(ctx, u)
	require.NoError(t, err)

	// user row vanishes underneath a live session
	repo.mu.Lock()
	delete(repo.users, u.ID)
	repo.mu.Unlock()

	_, err = sessions.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
