package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sessions is the redis-backed admin session allowlist.
type Sessions struct{ RDB *redis.Client }

func (s *Sessions) Put(ctx context.Context, id, email string, ttl time.Duration) error {
	return s.RDB.Set(ctx, fmt.Sprintf(KeyAdminSession, id), email, ttl).Err()
}

func (s *Sessions) Alive(ctx context.Context, id string) (bool, error) {
	return Exists(ctx, s.RDB, fmt.Sprintf(KeyAdminSession, id))
}

func (s *Sessions) Drop(ctx context.Context, id string) error {
	return s.RDB.Del(ctx, fmt.Sprintf(KeyAdminSession, id)).Err()
}
