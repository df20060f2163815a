//go:build integration

package redisstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/jrsteele09/baysawarr-web/storage/redisstore"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestStore_Redis(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := redisstore.Connect(ctx, url, redisstore.Options{DialTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	browserA := redisstore.New(client, "browser-a", time.Hour)
	browserB := redisstore.New(client, "browser-b", time.Hour)

	user := &users.User{ID: "u-1", Email: "awa@example.com", Role: users.RoleMember}
	require.NoError(t, storage.SaveSession(ctx, browserA, "abc123", user))

	token, ok := storage.LoadToken(ctx, browserA)
	require.True(t, ok)
	require.Equal(t, "abc123", token)

	_, ok = storage.LoadToken(ctx, browserB)
	require.False(t, ok, "sessions are isolated per browser id")

	ttl, err := client.TTL(ctx, "bsw:client:browser-a:token").Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.NoError(t, storage.ClearSession(ctx, browserA))
	_, err = browserA.Get(ctx, storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
