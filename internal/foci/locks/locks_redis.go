package locks

import (
	"context"
	"fmt"
	"time"

	platformRedis "turbofcl/internal/platform/redis"
	id "turbofcl/pkg/domain"
	"turbofcl/pkg/platform/sentinel"
)

// defaultLockTTL bounds how long a crashed assessor can hold an entity.
const defaultLockTTL = 2 * time.Minute

// RedisLocker serializes assessments across instances with SET NX.
type RedisLocker struct {
	client *platformRedis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *platformRedis.Client) *RedisLocker {
	return &RedisLocker{client: client, ttl: defaultLockTTL}
}

func (l *RedisLocker) Acquire(ctx context.Context, entityID id.EntityID) error {
	ok, err := l.client.SetNX(ctx, lockKey(entityID), "1", l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire assessment lock: %w", err)
	}
	if !ok {
		return sentinel.ErrLocked
	}
	return nil
}

func (l *RedisLocker) Release(ctx context.Context, entityID id.EntityID) error {
	if err := l.client.Del(ctx, lockKey(entityID)).Err(); err != nil {
		return fmt.Errorf("release assessment lock: %w", err)
	}
	return nil
}

func lockKey(entityID id.EntityID) string {
	return "foci:assessment:lock:" + entityID.String()
}
