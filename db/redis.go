package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

// ConnectRedis returns nil, nil when addr is empty: Redis is optional and
// the notifier falls back to in-process delivery.
func ConnectRedis(addr, password string, timeout time.Duration) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		err = fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
		return nil, multierr.Append(err, rdb.Close())
	}
	return rdb, nil
}
