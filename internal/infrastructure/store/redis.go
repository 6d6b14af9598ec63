package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/snapmatch/client-engine/internal/core/ports"
)

const connectTimeout = 5 * time.Second

// Field names within the session hash. One hash key holds the five entries,
// so a single HSET/DEL keeps the record atomic.
const (
	fieldToken       = "token"
	fieldRole        = "role"
	fieldEmail       = "email"
	fieldUserID      = "user_id"
	fieldDisplayName = "display_name"
)

// RedisConfig captures the settings for establishing a Redis connection.
type RedisConfig struct {
	Addr string
	DB   int
}

// ConnectRedis initialises a Redis client and validates connectivity with a
// ping.
func ConnectRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: cfg.Addr,
		DB:   cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// Redis is a SessionRepository backed by a Redis hash, for kiosk
// deployments where several photographer workstations share one session.
type Redis struct {
	client *redis.Client
	key    string
}

// NewRedis returns a redis-backed repository storing the record under key.
func NewRedis(client *redis.Client, key string) *Redis {
	return &Redis{client: client, key: key}
}

func (r *Redis) Save(ctx context.Context, rec ports.SessionRecord) error {
	err := r.client.HSet(ctx, r.key,
		fieldToken, rec.Token,
		fieldRole, rec.Role,
		fieldEmail, rec.Email,
		fieldUserID, rec.UserID,
		fieldDisplayName, rec.DisplayName,
	).Err()
	if err != nil {
		return fmt.Errorf("session hset: %w", err)
	}
	return nil
}

func (r *Redis) Load(ctx context.Context) (ports.SessionRecord, bool, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return ports.SessionRecord{}, false, fmt.Errorf("session hgetall: %w", err)
	}
	if len(fields) == 0 {
		return ports.SessionRecord{}, false, nil
	}
	return ports.SessionRecord{
		Token:       fields[fieldToken],
		Role:        fields[fieldRole],
		Email:       fields[fieldEmail],
		UserID:      fields[fieldUserID],
		DisplayName: fields[fieldDisplayName],
	}, true, nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("session del: %w", err)
	}
	return nil
}
