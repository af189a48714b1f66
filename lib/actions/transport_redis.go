package actions

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisTransport publishes webhook payloads on a Redis pub/sub channel
// named by target.
type RedisTransport struct {
	client *redis.Client
}

// NewRedisTransport connects to the Redis server at addr.
func NewRedisTransport(addr string) *RedisTransport {
	return &RedisTransport{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (t *RedisTransport) Name() string { return "redis" }

func (t *RedisTransport) Send(ctx context.Context, target string, payload []byte) error {
	return t.client.Publish(ctx, target, payload).Err()
}

func (t *RedisTransport) Close() error {
	return t.client.Close()
}

func (t *RedisTransport) HealthCheckName() string { return "redis-webhook" }

func (t *RedisTransport) HealthCheck() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return t.client.Ping(ctx).Err() == nil
}
