package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whispr-app/whispr/internal/application"
)

func sessionKey(userID string) string {
	return "user:session:" + userID
}

// SessionStore keeps the live session id per user in a redis hash.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	key := sessionKey(userID)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"sid":        sessionID,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, userID string) (string, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(userID)).Result()
	if err != nil {
		return "", err
	}
	if len(data) == 0 || data["sid"] == "" {
		return "", application.ErrSessionNotFound
	}
	return data["sid"], nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}

var _ application.SessionStore = (*SessionStore)(nil)
