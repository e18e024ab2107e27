package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// repo is the shared state store backed by redis. Keys are scoped to one
// session so several sessions can share a server.
type repo struct {
	rc        *redis.Client
	sessionId string
	exp       time.Duration
	logger    *slog.Logger
}

func NewRepo(rc *redis.Client, sessionId string, exp time.Duration, logger *slog.Logger) *repo {
	return &repo{
		rc:        rc,
		sessionId: sessionId,
		exp:       exp,
		logger:    logger,
	}
}

func (r repo) getStateKey(key string) string {
	return "session:" + r.sessionId + ":state:" + key
}

func (r repo) Get(ctx context.Context, key string) (string, bool, error) {
	r.logger.DebugContext(ctx, "called", "key", key)
	value, err := r.rc.Get(ctx, r.getStateKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", false, err
	}

	return value, true, nil
}

func (r repo) Set(ctx context.Context, key string, value string) error {
	r.logger.DebugContext(ctx, "called", "key", key, "value", value)
	if err := r.rc.Set(ctx, r.getStateKey(key), value, r.exp).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}
