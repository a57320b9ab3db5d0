package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/eventzone/booking-backend/internal/config"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it is still held by the caller
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// lockClient is the subset of the redis client the lock needs
type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// BookingLock is a per-booking mutex shared by every server instance
type BookingLock struct {
	client lockClient
	ttl    time.Duration
}

// NewRedisClient opens a client for cfg and verifies the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewBookingLock creates a lock whose entries expire after ttl
func NewBookingLock(client lockClient, ttl time.Duration) *BookingLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &BookingLock{client: client, ttl: ttl}
}

// Lock tries once to take the lock for bookingID. It returns false when another owner holds it.
func (l *BookingLock) Lock(ctx context.Context, bookingID int64, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, bookingLockKey(bookingID), owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to lock booking %d: %w", bookingID, err)
	}
	return ok, nil
}

// Unlock releases the lock if owner still holds it. An expired or foreign lock is left alone.
func (l *BookingLock) Unlock(ctx context.Context, bookingID int64, owner string) error {
	err := l.client.Eval(ctx, releaseScript, []string{bookingLockKey(bookingID)}, owner).Err()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to unlock booking %d: %w", bookingID, err)
	}
	return nil
}

func bookingLockKey(bookingID int64) string {
	return fmt.Sprintf("lock:booking:%d", bookingID)
}
