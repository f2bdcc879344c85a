package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSessions stores each session as a hash with a TTL.
type RedisSessions struct {
	client *redis.Client
	prefix string
}

// NewRedisSessions builds a store using keys "<prefix><id>".
func NewRedisSessions(client *redis.Client, prefix string) *RedisSessions {
	if prefix == "" {
		prefix = "portal:session:"
	}
	return &RedisSessions{client: client, prefix: prefix}
}

// Get loads the session hash for id.
func (r *RedisSessions) Get(ctx context.Context, id string) (*Session, error) {
	vals, err := r.client.HGetAll(ctx, r.prefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	userID, err := strconv.ParseInt(vals["user_id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("session %s: bad user_id: %w", id, err)
	}
	return &Session{
		UserID:   userID,
		Username: vals["username"],
		Email:    vals["email"],
		Role:     Role(vals["role"]),
	}, nil
}

// Set writes the session hash and its expiry atomically.
func (r *RedisSessions) Set(ctx context.Context, id string, s Session, ttl time.Duration) error {
	key := r.prefix + id
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			"user_id":  strconv.FormatInt(s.UserID, 10),
			"username": s.Username,
			"email":    s.Email,
			"role":     string(s.Role),
		})
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Destroy deletes the session hash.
func (r *RedisSessions) Destroy(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.prefix+id).Err(); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}
