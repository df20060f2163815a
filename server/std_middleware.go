package server

import (
	"net/http"
	"path"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Middleware wraps a handler. Guards from the guard package have this shape too.
type Middleware = func(http.HandlerFunc) http.HandlerFunc

// ChainMiddleware applies mw so that mw[0] is the outermost wrapper.
func ChainMiddleware(h http.HandlerFunc, mw ...Middleware) http.HandlerFunc {
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// HTMLMiddleWare is the stack for everything a browser loads directly.
func (s *Server) HTMLMiddleWare(mw ...Middleware) []Middleware {
	return append([]Middleware{
		s.WWWRedirectMiddleware,
		s.LoggingMiddleware,
		s.RecoverMiddleware,
		s.SecurityHeadersMiddleware,
	}, mw...)
}

// PageMiddleware is the HTML stack plus the per-request session provider. Guards
// passed in mw run after the session has been provided.
func (s *Server) PageMiddleware(mw ...Middleware) []Middleware {
	return s.HTMLMiddleWare(append([]Middleware{s.SessionProvider}, mw...)...)
}

func (s *Server) APIMiddleware() []Middleware {
	return []Middleware{s.RecoverMiddleware, s.CorsMiddleware}
}

// WWWRedirectMiddleware sends www.<host> permanently to <host>.
func (s *Server) WWWRedirectMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if host, ok := strings.CutPrefix(r.Host, "www."); ok {
			http.Redirect(w, r, getScheme(r)+"://"+host+r.RequestURI, http.StatusMovedPermanently)
			return
		}
		next(w, r)
	}
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		s.metrics.ObservePage(r.Method, rec.status, start)
		if s.env == "DEV" {
			log.Debug().Msgf("[%s] %s %s", paint(methodColour(r.Method), " %-7s", r.Method),
				paint(statusColour(rec.status), "%d", rec.status), r.URL.Path)
			return
		}
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	}
}

// SecurityHeadersMiddleware keeps pages out of foreign frames and the Referer
// header on this site.
func (s *Server) SecurityHeadersMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Content-Security-Policy", "frame-ancestors 'self'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "same-origin")
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()
		next(w, r)
	}
}

// CorsMiddleware applies the configured policy. Requests without an Origin header
// are same-origin and pass untouched.
func (s *Server) CorsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next(w, r)
			return
		}

		policy := s.config.GetCorsPolicy()
		allow, credentials := policy.AllowOrigin(origin)
		h := w.Header()
		h.Add("Vary", "Origin")
		if allow != "" {
			h.Set("Access-Control-Allow-Origin", allow)
			if credentials {
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method != http.MethodOptions {
			next(w, r)
			return
		}
		if allow != "" {
			h.Set("Access-Control-Allow-Methods", policy.Methods)
			h.Set("Access-Control-Allow-Headers", policy.Headers)
			h.Set("Access-Control-Max-Age", "86400")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// assetMaxAge is the browser cache lifetime per static extension. Assets carry an
// ETag so expiry only costs a revalidation.
var assetMaxAge = map[string]string{
	".svg": "3600", ".png": "3600", ".jpg": "3600", ".jpeg": "3600",
	".webp": "3600", ".ico": "86400", ".gif": "3600",
	".css": "300", ".js": "300", ".woff2": "86400", ".woff": "86400", ".ttf": "86400",
}

// CacheMiddleware sets Cache-Control for static assets
func (s *Server) CacheMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if age, ok := assetMaxAge[strings.ToLower(path.Ext(r.URL.Path))]; ok {
			w.Header().Set("Cache-Control", "public, max-age="+age+", must-revalidate")
		}
		next(w, r)
	}
}
