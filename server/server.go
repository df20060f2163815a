package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/baysawarr-web/internal/config"
	"github.com/jrsteele09/baysawarr-web/internal/metrics"
	"github.com/jrsteele09/baysawarr-web/storage/redisstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// defaultRestoreWait bounds how long a page waits for the session restore
const defaultRestoreWait = 10 * time.Second

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	pages       pageSet
	validate    *validator.Validate
	metrics     *metrics.Metrics
	registry    *prometheus.Registry
	transport   http.RoundTripper
	redis       redis.Cmdable
	loginLimit  *RateLimiter
	restoreWait time.Duration
	cancel      context.CancelFunc
}

// Option customises a Server
type Option func(*Server)

// WithBaseTransport sets the round tripper used to reach the remote API
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(s *Server) { s.transport = rt }
}

// WithRedis stores sessions in the given Redis client instead of connecting from config
func WithRedis(client redis.Cmdable) Option {
	return func(s *Server) { s.redis = client }
}

// WithRegistry registers metrics with reg instead of a fresh registry
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithRestoreWait changes how long a page waits for the session restore
func WithRestoreWait(d time.Duration) Option {
	return func(s *Server) { s.restoreWait = d }
}

func New(ctx context.Context, config config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		mux:         http.NewServeMux(),
		config:      config,
		env:         config.GetEnv(),
		transport:   http.DefaultTransport,
		restoreWait: defaultRestoreWait,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	s.metrics = metrics.New(s.registry)

	if s.redis == nil && config.GetSessionBackend() == configRedisBackend {
		client, err := redisstore.Connect(ctx, config.GetRedisURL(), redisstore.Options{})
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to connect session store: %w", err)
		}
		s.redis = client
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.pages = pages
	s.validate = newValidator()

	limiterCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loginLimit = NewRateLimiter(limiterCtx, rate.Limit(config.GetLoginRate()), config.GetLoginBurst(), config.GetTrustedProxies())

	s.initRoutes()
	s.logRoutes()

	log.Info().
		Str("api", config.GetAPIURL()).
		Str("session_backend", config.GetSessionBackend()).
		Msg("Server initialised")
	return s, nil
}

const configRedisBackend = "redis"

// Close stops background work
func (s *Server) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Debug().Msgf("[%s] %s", paint(methodColour(method), " %-7s", method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
