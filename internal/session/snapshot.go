package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"chronicle/internal/middleware"
	"chronicle/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	snapshotPrefix = "chronicle:session:"
	snapshotTTL    = 7 * 24 * time.Hour
)

// SnapshotStore persists the current user of a session across restarts.
type SnapshotStore interface {
	// Load returns (nil, nil) when no snapshot exists for the session.
	Load(ctx context.Context, sid string) (*models.User, error)
	Save(ctx context.Context, sid string, user *models.User) error
	Delete(ctx context.Context, sid string) error
}

type redisSnapshotStore struct {
	rdb *redis.Client
}

// NewRedisSnapshotStore returns a SnapshotStore backed by Redis. A nil client
// degrades to a store that never finds anything and drops writes.
func NewRedisSnapshotStore(rdb *redis.Client) SnapshotStore {
	return &redisSnapshotStore{rdb: rdb}
}

func (s *redisSnapshotStore) Load(ctx context.Context, sid string) (*models.User, error) {
	if s.rdb == nil {
		return nil, nil
	}

	key := snapshotPrefix + sid
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewDataAccessError(err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		// A snapshot we cannot decode is as good as no snapshot. Clear it so
		// the next read does not trip over it again.
		middleware.Logger.WarnContext(ctx, "discarding malformed session snapshot",
			"session_id", sid, "error", err)
		s.rdb.Del(ctx, key)
		return nil, nil
	}
	return &user, nil
}

func (s *redisSnapshotStore) Save(ctx context.Context, sid string, user *models.User) error {
	if s.rdb == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := s.rdb.Set(ctx, snapshotPrefix+sid, data, snapshotTTL).Err(); err != nil {
		return models.NewDataAccessError(err)
	}
	return nil
}

func (s *redisSnapshotStore) Delete(ctx context.Context, sid string) error {
	if s.rdb == nil {
		return nil
	}
	if err := s.rdb.Del(ctx, snapshotPrefix+sid).Err(); err != nil {
		return models.NewDataAccessError(err)
	}
	return nil
}
