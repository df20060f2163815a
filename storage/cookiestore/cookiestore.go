// Package cookiestore exposes the browser's cookies as the persisted session storage
// for the duration of one request.
package cookiestore

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/baysawarr-web/storage"
)

const cookiePrefix = "bsw_"

// Options control the cookies written by the store
type Options struct {
	Secure bool          // Set the Secure flag (HTTPS deployments)
	MaxAge time.Duration // Lifetime of written cookies
	Path   string        // Cookie path, defaults to "/"
}

// Store reads the request cookies and collects writes as pending cookies. Writes are
// visible to later reads of the same request at once, and reach the response when
// Commit runs: the writer returned by Writer commits just before the header is sent.
// Writes after the commit never touch the response.
type Store struct {
	w    http.ResponseWriter
	r    *http.Request
	opts Options

	mu        sync.Mutex
	pending   map[string]*string // nil value marks a deletion
	order     []string           // keys in first-write order
	committed bool
}

var _ storage.Store = (*Store)(nil)

// New binds a store to one request/response pair
func New(w http.ResponseWriter, r *http.Request, opts Options) *Store {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &Store{
		w:       w,
		r:       r,
		opts:    opts,
		pending: make(map[string]*string),
	}
}

// CookieName returns the cookie used for a storage key
func CookieName(key string) string {
	return cookiePrefix + key
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value, ok := s.pending[key]; ok {
		if value == nil {
			return "", storage.ErrNotFound
		}
		return *value, nil
	}

	cookie, err := s.r.Cookie(CookieName(key))
	if err != nil {
		return "", storage.ErrNotFound
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return "", fmt.Errorf("[cookiestore Get] decode %s: %w", key, err)
	}
	return string(decoded), nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.record(key, &value)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.record(key, nil)
	return nil
}

func (s *Store) record(key string, value *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.pending[key]; !seen {
		s.order = append(s.order, key)
	}
	s.pending[key] = value
}

// Commit writes a Set-Cookie header for every pending write and detaches the store
// from the response. It must run on the goroutine that owns the response, and only
// the first call writes anything.
func (s *Store) Commit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.committed {
		return
	}
	s.committed = true

	for _, key := range s.order {
		c := &http.Cookie{
			Name:     CookieName(key),
			Path:     s.opts.Path,
			HttpOnly: true,
			Secure:   s.opts.Secure,
			SameSite: http.SameSiteLaxMode,
		}
		if value := s.pending[key]; value != nil {
			c.Value = base64.RawURLEncoding.EncodeToString([]byte(*value))
			c.MaxAge = int(s.opts.MaxAge.Seconds())
		} else {
			c.MaxAge = -1
		}
		http.SetCookie(s.w, c)
	}
}

// Writer wraps the response so that pending cookies are committed before the
// header goes out
func (s *Store) Writer() http.ResponseWriter {
	return &commitWriter{ResponseWriter: s.w, store: s}
}

type commitWriter struct {
	http.ResponseWriter
	store *Store
}

func (w *commitWriter) WriteHeader(code int) {
	w.store.Commit()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.store.Commit()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
