package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/whispr-app/whispr/internal/domain/entity"
	"github.com/whispr-app/whispr/internal/domain/repository"
	"github.com/whispr-app/whispr/pkg/helpers"
)

// ErrSessionNotFound is returned by a SessionStore when no live session
// exists for the user.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists the live session id per user. The redis
// implementation lives in internal/infrastructure/redisstore.
type SessionStore interface {
	Save(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// SessionManager maps an authenticated identity to a token pair and back.
// Tokens carry the user id and a session id; the session id must match the
// live one in the store, so logout revokes every outstanding token at once.
type SessionManager struct {
	Repo   repository.UserRepository
	Store  SessionStore
	JWT    *helpers.JWTManager
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewSessionManager(repo repository.UserRepository, store SessionStore, jwt *helpers.JWTManager, ttl time.Duration, logger *logrus.Logger) *SessionManager {
	return &SessionManager{Repo: repo, Store: store, JWT: jwt, TTL: ttl, Logger: logger}
}

// Issue starts a fresh session for an authenticated user.
func (m *SessionManager) Issue(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	pair, err := m.generatePair(u.ID, sid)
	if err != nil {
		return TokenPair{}, err
	}
	if err := m.Store.Save(ctx, u.ID, sid, m.TTL); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Authenticate rehydrates the principal behind an access token. Any gap
// (bad token, revoked session, session id mismatch, or a user row that no
// longer exists) resolves to ErrNotAuthenticated, never to a stale identity.
func (m *SessionManager) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := m.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	sid, err := m.Store.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if sid != claims.SessionID {
		return nil, ErrNotAuthenticated
	}
	u, err := m.Repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	return u, nil
}

// Refresh rotates the session id and both tokens.
func (m *SessionManager) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := m.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrNotAuthenticated
	}
	sid, err := m.Store.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return TokenPair{}, ErrNotAuthenticated
		}
		return TokenPair{}, err
	}
	if sid != claims.SessionID {
		return TokenPair{}, ErrNotAuthenticated
	}
	if _, err := m.Repo.GetByID(ctx, claims.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TokenPair{}, ErrNotAuthenticated
		}
		return TokenPair{}, err
	}

	newSID := uuid.NewString()
	pair, err := m.generatePair(claims.UserID, newSID)
	if err != nil {
		return TokenPair{}, err
	}
	if err := m.Store.Save(ctx, claims.UserID, newSID, m.TTL); err != nil {
		return TokenPair{}, err
	}
	return pair, nil
}

// Revoke ends the user's session; outstanding tokens die with it.
func (m *SessionManager) Revoke(ctx context.Context, userID string) error {
	return m.Store.Delete(ctx, userID)
}

func (m *SessionManager) generatePair(userID, sid string) (TokenPair, error) {
	access, aexp, err := m.JWT.GenerateAccessToken(userID, sid)
	if err != nil {
		m.Logger.WithError(err).WithField("user_id", userID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := m.JWT.GenerateRefreshToken(userID, sid)
	if err != nil {
		m.Logger.WithError(err).WithField("user_id", userID).Error("generate refresh token failed")
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}
