package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/stretchr/testify/require"
)

func TestLoadToken(t *testing.T) {
	ctx := context.Background()

	t.Run("absent", func(t *testing.T) {
		_, ok := storage.LoadToken(ctx, storage.NewMemory())
		require.False(t, ok)
	})

	for _, sentinel := range []string{"", "undefined", "null"} {
		t.Run("sentinel "+sentinel, func(t *testing.T) {
			s := storage.NewMemory()
			require.NoError(t, s.Set(ctx, storage.KeyToken, sentinel))
			_, ok := storage.LoadToken(ctx, s)
			require.False(t, ok)
		})
	}

	t.Run("present", func(t *testing.T) {
		s := storage.NewMemory()
		require.NoError(t, s.Set(ctx, storage.KeyToken, "abc123"))
		token, ok := storage.LoadToken(ctx, s)
		require.True(t, ok)
		require.Equal(t, "abc123", token)
	})
}

func TestSaveAndClearSession(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemory()
	user := &users.User{ID: "u-1", Email: "awa@example.com", FirstName: "Awa", Role: users.RoleMember}

	require.NoError(t, storage.SaveSession(ctx, s, "xyz", user))

	token, ok := storage.LoadToken(ctx, s)
	require.True(t, ok)
	require.Equal(t, "xyz", token)

	loaded, err := storage.LoadUser(ctx, s)
	require.NoError(t, err)
	require.Equal(t, user, loaded)

	require.NoError(t, storage.ClearSession(ctx, s))
	require.Empty(t, s.Snapshot())

	_, err = storage.LoadUser(ctx, s)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Clearing an already empty record is fine
	require.NoError(t, storage.ClearSession(ctx, s))
}

type failingDelete struct {
	*storage.Memory
	failKey string
}

func (f failingDelete) Delete(ctx context.Context, key string) error {
	if key == f.failKey {
		return errors.New("disk full")
	}
	return f.Memory.Delete(ctx, key)
}

func TestClearSession_AttemptsEveryKey(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	require.NoError(t, storage.SaveSession(ctx, mem, "xyz", &users.User{ID: "u-1", Email: "a@b.com"}))

	err := storage.ClearSession(ctx, failingDelete{Memory: mem, failKey: storage.KeyToken})
	require.Error(t, err)
	require.Contains(t, err.Error(), "delete token")

	_, err = mem.Get(ctx, storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
