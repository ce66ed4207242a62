package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher appends events to a redis stream.
type RedisPublisher struct {
	rdb    redis.Cmdable
	stream string
	maxLen int64
	closer func() error
}

// NewRedisPublisher writes to stream, trimming it to roughly maxLen entries
// when maxLen > 0.
func NewRedisPublisher(rdb *redis.Client, stream string, maxLen int64) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, stream: stream, maxLen: maxLen, closer: rdb.Close}
}

func (r *RedisPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"resource": ev.Resource,
			"outcome":  ev.Outcome,
			"event":    payload,
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}
	return r.rdb.XAdd(ctx, args).Err()
}

func (r *RedisPublisher) Close() error { return r.closer() }
