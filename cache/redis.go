package cache

import (
	"context"
	"errors"
	"github.com/redis/go-redis/v9"
	"time"
)

// Redis a callback slot that keeps the document under key. A zero expiration keeps it forever.
func Redis(client *redis.Client, key string, expiration time.Duration) Slot {
	read := func(ctx context.Context) (string, error) {
		document, err := client.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return document, err
	}
	write := func(ctx context.Context, document string) error {
		return client.Set(ctx, key, document, expiration).Err()
	}
	return Callback(read, write)
}
