package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOpts locate the redis instance that carries the audit stream.
type RedisOpts struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration // default 5s
	// Stream, when set, must be absent or already hold a stream.
	Stream string
}

// ConnectRedis opens a client, pings it and checks the audit stream key.
func ConnectRedis(opts RedisOpts) (*redis.Client, error) {
	timeout := opts.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := checkRedis(ctx, rdb, opts.Stream); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func checkRedis(ctx context.Context, rdb *redis.Client, stream string) error {
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	if stream == "" {
		return nil
	}

	kind, err := rdb.Type(ctx, stream).Result()
	if err != nil {
		return fmt.Errorf("redis type %s: %w", stream, err)
	}
	switch kind {
	case "none", "stream":
		return nil
	default:
		return fmt.Errorf("redis key %q holds a %s, not a stream", stream, kind)
	}
}
