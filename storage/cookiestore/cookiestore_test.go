package cookiestore_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/jrsteele09/baysawarr-web/storage/cookiestore"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/stretchr/testify/require"
)

func cookieValue(v string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(v))
}

func TestStore_ReadsRequestCookies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookiestore.CookieName(storage.KeyToken), Value: cookieValue("abc123")})

	s := cookiestore.New(httptest.NewRecorder(), req, cookiestore.Options{})
	token, ok := storage.LoadToken(context.Background(), s)
	require.True(t, ok)
	require.Equal(t, "abc123", token)

	_, err := s.Get(context.Background(), storage.KeyUser)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_WritesAreVisibleAndEmitted(t *testing.T) {
	ctx := context.Background()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	s := cookiestore.New(rec, req, cookiestore.Options{Secure: true, MaxAge: time.Hour})

	user := &users.User{ID: "u-1", Email: "a@b.com", Role: users.RoleMember}
	require.NoError(t, storage.SaveSession(ctx, s, "xyz", user))

	loaded, err := storage.LoadUser(ctx, s)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", loaded.Email)
	require.Empty(t, rec.Header().Values("Set-Cookie"))

	s.Commit()
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		require.True(t, c.HttpOnly)
		require.True(t, c.Secure)
		require.Equal(t, 3600, c.MaxAge)
	}
	require.Equal(t, cookieValue("xyz"), cookies[0].Value)
}

func TestStore_ClearSessionExpiresCookies(t *testing.T) {
	ctx := context.Background()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: cookiestore.CookieName(storage.KeyToken), Value: cookieValue("expired")})
	req.AddCookie(&http.Cookie{Name: cookiestore.CookieName(storage.KeyUser), Value: cookieValue(`{"id":"u-1"}`)})

	s := cookiestore.New(rec, req, cookiestore.Options{})
	require.NoError(t, storage.ClearSession(ctx, s))

	_, ok := storage.LoadToken(ctx, s)
	require.False(t, ok)

	s.Writer().WriteHeader(http.StatusSeeOther)
	require.Len(t, rec.Result().Cookies(), 2)
	for _, c := range rec.Result().Cookies() {
		require.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestStore_WritesAfterCommitStayOffTheResponse(t *testing.T) {
	ctx := context.Background()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cookiestore.CookieName(storage.KeyToken), Value: cookieValue("abc123")})

	s := cookiestore.New(rec, req, cookiestore.Options{})
	w := s.Writer()
	_, err := w.Write([]byte("page"))
	require.NoError(t, err)
	require.Empty(t, rec.Header().Values("Set-Cookie"))

	// a restore that resolves after the response started
	require.NoError(t, storage.ClearSession(ctx, s))
	require.NoError(t, s.Set(ctx, storage.KeyUser, `{"id":"u-2"}`))
	s.Commit()
	require.Empty(t, rec.Header().Values("Set-Cookie"))

	_, ok := storage.LoadToken(ctx, s)
	require.False(t, ok)
	value, err := s.Get(ctx, storage.KeyUser)
	require.NoError(t, err)
	require.Equal(t, `{"id":"u-2"}`, value)
}
