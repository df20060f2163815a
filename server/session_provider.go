package server

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/navigation"
	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/jrsteele09/baysawarr-web/storage/cookiestore"
	"github.com/jrsteele09/baysawarr-web/storage/redisstore"
)

// browserIDCookie identifies the browser whose session lives in Redis
const browserIDCookie = "bsw_client"

type contextKey string

const requestKey contextKey = "request"

// request is everything built for one application load
type request struct {
	api   *apiclient.Client
	nav   *navigation.Recorder
	store *session.Store
}

// SessionProvider builds the session store of the request, mounts it and waits for the
// restore before handing over. A reset requested while restoring (the API answered
// 401 to the persisted token) is honoured straight away. Cookie writes reach the
// response only from this request's goroutine, so a restore still running after the
// wait cannot touch headers the handler is writing.
func (s *Server) SessionProvider(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persisted, w := s.persistedStore(w, r)
		nav := &navigation.Recorder{}
		api := apiclient.New(s.config.GetAPIURL(), persisted, nav,
			apiclient.WithTimeout(s.config.GetAPITimeout()),
			apiclient.WithUploadTimeout(s.config.GetAPIUploadTimeout()),
			apiclient.WithBaseTransport(s.transport),
			apiclient.WithInvalidationHook(s.metrics.SessionInvalidated),
		)
		store := session.NewStore(api, persisted, nav, session.WithObserver(s.metrics))

		if c, ok := persisted.(interface{ Commit() }); ok {
			// covers handlers that never write: the header is sent after we return
			defer c.Commit()
		}
		store.Mount(r.Context())
		defer store.Unmount()

		ctx, cancel := context.WithTimeout(r.Context(), s.restoreWait)
		_, err := store.Wait(ctx)
		cancel()
		if err == nil {
			if location, ok := nav.Location(); ok && location != r.URL.Path {
				redirectSuccess(w, r, location)
				return
			}
		}

		ctx = session.WithStore(r.Context(), store)
		ctx = context.WithValue(ctx, requestKey, &request{api: api, nav: nav, store: store})
		next(w, r.WithContext(ctx))
	}
}

// persistedStore returns the browser's durable storage for this request and the
// writer the rest of the chain must use
func (s *Server) persistedStore(w http.ResponseWriter, r *http.Request) (storage.Store, http.ResponseWriter) {
	ttl := s.config.GetSessionTTL()
	if s.redis != nil {
		return redisstore.New(s.redis, s.browserID(w, r, ttl), ttl), w
	}
	cookies := cookiestore.New(w, r, cookiestore.Options{
		Secure: s.secureCookies(r),
		MaxAge: ttl,
	})
	return cookies, cookies.Writer()
}

// browserID returns the id cookie of the browser, minting one when missing
func (s *Server) browserID(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if c, err := r.Cookie(browserIDCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     browserIDCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies(r),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) secureCookies(r *http.Request) bool {
	return s.config.GetCookieSecure() || getScheme(r) == "https"
}

func requestFrom(r *http.Request) *request {
	req, ok := r.Context().Value(requestKey).(*request)
	if !ok {
		panic("server: handler registered without SessionProvider")
	}
	return req
}
