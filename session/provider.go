package session

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
)

type contextKey struct{}

// WithStore provides s to everything running under ctx
func WithStore(ctx context.Context, s *Store) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the provided store or ErrNoProvider
func FromContext(ctx context.Context) (*Store, error) {
	s, ok := ctx.Value(contextKey{}).(*Store)
	if !ok || s == nil {
		return nil, fmt.Errorf("[session FromContext] %w", apperrors.ErrNoProvider)
	}
	return s, nil
}

// MustFromContext is FromContext for code that can only run under a provider. It
// panics when no store was provided, which is a wiring mistake, not a runtime state.
func MustFromContext(ctx context.Context) *Store {
	s, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return s
}
