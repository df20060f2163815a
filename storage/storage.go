// Package storage holds the persisted copy of the session: the bearer token and the
// serialized identity record. Every writer that needs to drop the session goes through
// ClearSession so the set of cleared keys is defined in one place.
package storage

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/users"
)

const (
	// KeyToken holds the bearer credential
	KeyToken = "token"
	// KeyUser holds the JSON-serialized identity record
	KeyUser = "user"
)

// ErrNotFound is returned by Store.Get when a key is absent
var ErrNotFound = apperrors.ErrNotFound

// Store is string-keyed durable storage that survives a reload of the application.
type Store interface {
	// Get returns the value for key or ErrNotFound
	Get(ctx context.Context, key string) (string, error)

	// Set creates or replaces the value for key
	Set(ctx context.Context, key, value string) error

	// Delete removes key; removing an absent key is not an error
	Delete(ctx context.Context, key string) error
}

// sessionKeys is the complete persisted session record
var sessionKeys = []string{KeyToken, KeyUser}

// emptyTokens are values older clients wrote instead of removing the key
var emptyTokens = map[string]struct{}{
	"":          {},
	"undefined": {},
	"null":      {},
}

// LoadToken returns the persisted bearer token. Absent keys, storage failures and the
// empty sentinels all report ok == false.
func LoadToken(ctx context.Context, s Store) (token string, ok bool) {
	token, err := s.Get(ctx, KeyToken)
	if err != nil {
		return "", false
	}
	if _, empty := emptyTokens[token]; empty {
		return "", false
	}
	return token, true
}

// LoadUser decodes the persisted identity record
func LoadUser(ctx context.Context, s Store) (*users.User, error) {
	raw, err := s.Get(ctx, KeyUser)
	if err != nil {
		return nil, fmt.Errorf("[storage LoadUser] %w", err)
	}
	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("[storage LoadUser] decode user: %w", err)
	}
	return &u, nil
}

// SaveSession persists the token and the serialized user
func SaveSession(ctx context.Context, s Store, token string, user *users.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("[storage SaveSession] encode user: %w", err)
	}
	if err := s.Set(ctx, KeyToken, token); err != nil {
		return fmt.Errorf("[storage SaveSession] write token: %w", err)
	}
	if err := s.Set(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("[storage SaveSession] write user: %w", err)
	}
	return nil
}

// ClearSession removes every key of the persisted session record. All keys are
// attempted even if one delete fails; the first failure is returned.
func ClearSession(ctx context.Context, s Store) error {
	var firstErr error
	for _, key := range sessionKeys {
		if err := s.Delete(ctx, key); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("[storage ClearSession] delete %s: %w", key, err)
		}
	}
	return firstErr
}
