package persist

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix         = "wording:"
	redisConnectionTimeout = 5 * time.Second
)

// RedisOptions contains configuration for the Redis snapshot store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps wording snapshots in Redis, for deployments where local
// disk does not survive restarts.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis backed snapshot store and verifies the
// connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	// Parse address to handle redis:// scheme
	addr := opts.Addr
	if parsedURL, err := url.Parse(opts.Addr); err == nil && parsedURL.Scheme == "redis" {
		addr = parsedURL.Host
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisConnectionTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Read(ctx context.Context, locale string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+locale).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("locale %q: %w", locale, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func (r *RedisStore) Write(ctx context.Context, locale string, data []byte) error {
	return r.client.Set(ctx, redisKeyPrefix+locale, data, 0).Err()
}

// Close releases the underlying Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
