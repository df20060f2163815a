// Package guard gates protected pages on the state of the request's session store.
package guard

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/rs/zerolog/log"
)

// Decision is what the guard does with a request
type Decision int

const (
	// Pending: the initial restore has not resolved. Neither redirect nor render.
	Pending Decision = iota
	// Redirect to the login entry point
	Redirect
	// Render the protected content
	Render
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Redirect:
		return "redirect"
	case Render:
		return "render"
	}
	return "unknown"
}

// Decide maps a session state to a decision. No role check is made here.
func Decide(st session.State) Decision {
	switch {
	case st.IsLoading:
		return Pending
	case st.User == nil:
		return Redirect
	default:
		return Render
	}
}

// DefaultWait bounds how long a request waits for the restore to resolve
const DefaultWait = 10 * time.Second

type options struct {
	wait    time.Duration
	pending http.HandlerFunc
}

// Option configures RequireSession
type Option func(*options)

// WithWait changes how long a request waits for the restore
func WithWait(d time.Duration) Option {
	return func(o *options) { o.wait = d }
}

// WithPendingHandler replaces the neutral loading placeholder
func WithPendingHandler(h http.HandlerFunc) Option {
	return func(o *options) { o.pending = h }
}

// RequireSession lets a request through only when its session store resolved to an
// authenticated state. Unauthenticated visitors are sent to loginPath with the
// requested location in "next".
func RequireSession(loginPath string, opts ...Option) func(http.HandlerFunc) http.HandlerFunc {
	o := options{wait: DefaultWait, pending: pendingPlaceholder}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store, err := session.FromContext(r.Context())
			if err != nil {
				log.Err(err).Str("path", r.URL.Path).Msg("Protected route registered without a session provider")
				http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), o.wait)
			defer cancel()
			st, _ := store.Wait(ctx)

			switch Decide(st) {
			case Pending:
				o.pending(w, r)
			case Redirect:
				redirect(w, r, LoginURL(loginPath, r.URL.RequestURI()))
			case Render:
				next(w, r)
			}
		}
	}
}

// RequireRole restricts a page to the given roles. It must run after RequireSession.
func RequireRole(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			store, err := session.FromContext(r.Context())
			if err != nil || !store.User().HasRole(roles...) {
				http.Error(w, "403 - Forbidden", http.StatusForbidden)
				return
			}
			next(w, r)
		}
	}
}

// LoginURL builds the login location that returns to next after a successful login
func LoginURL(loginPath, next string) string {
	if next == "" || next == "/" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

func pendingPlaceholder(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`<!doctype html><html><head><meta http-equiv="refresh" content="1"></head><body><p>Chargement…</p></body></html>`))
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", location)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
