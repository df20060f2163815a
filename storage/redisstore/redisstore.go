// Package redisstore keeps each browser's persisted session in Redis, keyed by an
// opaque browser id, so the bearer token never leaves the server.
package redisstore

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bsw:client:"

// Options override the go-redis pool settings
type Options struct {
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Connect parses url, applies the overrides and pings the server
func Connect(ctx context.Context, url string, o Options) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("[redisstore Connect] parse redis URL: %w", err)
	}
	if o.PoolSize > 0 {
		opts.PoolSize = o.PoolSize
	}
	if o.DialTimeout > 0 {
		opts.DialTimeout = o.DialTimeout
	}
	if o.ReadTimeout > 0 {
		opts.ReadTimeout = o.ReadTimeout
	}
	if o.WriteTimeout > 0 {
		opts.WriteTimeout = o.WriteTimeout
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("[redisstore Connect] redis ping failed: %w", err)
	}
	return client, nil
}

// Store is the persisted session of one browser
type Store struct {
	client   redis.Cmdable
	clientID string
	ttl      time.Duration
}

var _ storage.Store = (*Store)(nil)

// New returns the store for clientID. A ttl of zero keeps keys until deleted.
func New(client redis.Cmdable, clientID string, ttl time.Duration) *Store {
	return &Store{client: client, clientID: clientID, ttl: ttl}
}

func (s *Store) key(key string) string {
	return keyPrefix + s.clientID + ":" + key
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if apperrors.Is(err, redis.Nil) {
		return "", apperrors.Wrapf(storage.ErrNotFound, "[redisstore Get] %s", key)
	}
	if err != nil {
		return "", fmt.Errorf("[redisstore Get] %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("[redisstore Set] %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("[redisstore Delete] %s: %w", key, err)
	}
	return nil
}
