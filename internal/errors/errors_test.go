package errors_test

import (
	"fmt"
	"testing"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapf(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, apperrors.Wrapf(nil, "context %d", 1))
	})

	t.Run("wraps with context", func(t *testing.T) {
		err := apperrors.Wrapf(apperrors.ErrNotFound, "[storage Get] key %s", "token")
		require.EqualError(t, err, "[storage Get] key token: not found")
		require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("status %d", e.code) }

func TestAs(t *testing.T) {
	err := fmt.Errorf("outer: %w", &statusErr{code: 401})
	var target *statusErr
	require.True(t, apperrors.As(err, &target))
	require.Equal(t, 401, target.code)
}
