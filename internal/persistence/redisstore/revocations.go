// Package redisstore keeps token revocation markers in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "booking:revoked:"

// Revocations stores, per user, the instant before which issued tokens are
// no longer accepted. Keys expire after ttl, which should match the token
// lifetime since older tokens are rejected on expiry anyway.
type Revocations struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRevocations returns a store on client.
func NewRevocations(client redis.Cmdable, ttl time.Duration) *Revocations {
	return &Revocations{client: client, ttl: ttl}
}

// Connect builds a client for addr and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func revocationKey(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Revoke records at as the revocation instant for userID.
func (r *Revocations) Revoke(ctx context.Context, userID int64, at time.Time) error {
	value := strconv.FormatInt(at.Unix(), 10)
	if err := r.client.Set(ctx, revocationKey(userID), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set revocation for user %d: %w", userID, err)
	}
	return nil
}

// RevokedSince returns the recorded revocation instant, if any.
func (r *Revocations) RevokedSince(ctx context.Context, userID int64) (time.Time, bool, error) {
	value, err := r.client.Get(ctx, revocationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get revocation for user %d: %w", userID, err)
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse revocation for user %d: %w", userID, err)
	}
	return time.Unix(seconds, 0).UTC(), true, nil
}
