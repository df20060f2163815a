// Package mockapi is an in-memory stand-in for the BAY SA WARR REST API. It backs the
// tests and the local development binary; tokens are real signed JWTs that expire, so
// the front-end's session handling sees genuine 401s.
package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/users"
)

const (
	issuer          = "baysawarr-mockapi"
	defaultTokenTTL = time.Hour
	maxUploadSize   = 10 << 20
)

// Options configure the mock API
type Options struct {
	Secret   []byte        // HMAC secret for tokens
	TokenTTL time.Duration // Lifetime of login tokens
	Prefix   string        // Path prefix, defaults to "/api"
}

// Server implements the remote API contract in memory
type Server struct {
	mux      *http.ServeMux
	secret   []byte
	tokenTTL time.Duration
	prefix   string

	clockMu sync.RWMutex
	clock   func() time.Time

	revokedMu sync.RWMutex
	revoked   map[string]struct{}

	requestsMu sync.Mutex
	requests   []Request

	users       *userRepo
	enrollments *collection[apiclient.Enrollment]
	products    *collection[apiclient.Product]
	blogs       *collection[apiclient.Blog]
	formations  *collection[apiclient.Formation]
	events      *collection[apiclient.Event]
	contacts    *collection[apiclient.Contact]
}

// Request is what the mock saw of an incoming call
type Request struct {
	Method        string
	Path          string
	Authorization string
}

// New creates an empty mock API
func New(opts Options) *Server {
	if len(opts.Secret) == 0 {
		opts.Secret = []byte("mockapi-development-secret")
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.Prefix == "" {
		opts.Prefix = "/api"
	}

	s := &Server{
		mux:         http.NewServeMux(),
		secret:      opts.Secret,
		tokenTTL:    opts.TokenTTL,
		prefix:      strings.TrimRight(opts.Prefix, "/"),
		clock:       time.Now,
		revoked:     make(map[string]struct{}),
		users:       newUserRepo(),
		enrollments: newCollection(func(e *apiclient.Enrollment) *string { return &e.ID }),
		products:    newCollection(func(p *apiclient.Product) *string { return &p.ID }),
		blogs:       newCollection(func(b *apiclient.Blog) *string { return &b.ID }),
		formations:  newCollection(func(f *apiclient.Formation) *string { return &f.ID }),
		events:      newCollection(func(e *apiclient.Event) *string { return &e.ID }),
		contacts:    newCollection(func(c *apiclient.Contact) *string { return &c.ID }),
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requestsMu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Authorization: r.Header.Get("Authorization")})
	s.requestsMu.Unlock()

	s.mux.ServeHTTP(w, r)
}

// Requests returns every request received so far
func (s *Server) Requests() []Request {
	s.requestsMu.Lock()
	defer s.requestsMu.Unlock()
	return append([]Request(nil), s.requests...)
}

// CountRequests returns how many requests hit path
func (s *Server) CountRequests(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// SetClock replaces the clock used for token issue and expiry checks
func (s *Server) SetClock(clock func() time.Time) {
	s.clockMu.Lock()
	defer s.clockMu.Unlock()
	s.clock = clock
}

func (s *Server) now() time.Time {
	s.clockMu.RLock()
	defer s.clockMu.RUnlock()
	return s.clock()
}

// RevokeToken makes a still valid token fail with 401
func (s *Server) RevokeToken(raw string) error {
	c, err := s.parseToken(raw)
	if err != nil {
		return fmt.Errorf("[mockapi RevokeToken] %w", err)
	}
	s.revokedMu.Lock()
	defer s.revokedMu.Unlock()
	s.revoked[c.ID] = struct{}{}
	return nil
}

func (s *Server) isRevoked(jti string) bool {
	s.revokedMu.RLock()
	defer s.revokedMu.RUnlock()
	_, ok := s.revoked[jti]
	return ok
}

// AddUser registers an account that can log in with password
func (s *Server) AddUser(user users.User, password string) (users.User, error) {
	if user.Role == "" {
		user.Role = users.RoleMember
	}
	stored, err := s.users.upsert(user, password)
	if err != nil {
		return users.User{}, fmt.Errorf("[mockapi AddUser] %w", err)
	}
	return stored, nil
}

// Users lists the registered accounts
func (s *Server) Users() []users.User {
	return s.users.list()
}

// AddProduct stores a product directly
func (s *Server) AddProduct(p apiclient.Product) apiclient.Product { return s.products.create(p) }

// AddBlog stores a blog post directly
func (s *Server) AddBlog(b apiclient.Blog) apiclient.Blog { return s.blogs.create(b) }

// AddEvent stores an event directly
func (s *Server) AddEvent(e apiclient.Event) apiclient.Event { return s.events.create(e) }

// AddFormation stores a formation directly
func (s *Server) AddFormation(f apiclient.Formation) apiclient.Formation {
	return s.formations.create(f)
}

// AddEnrollment stores an enrollment directly
func (s *Server) AddEnrollment(e apiclient.Enrollment) apiclient.Enrollment {
	if e.Status == "" {
		e.Status = apiclient.EnrollmentPending
	}
	return s.enrollments.create(e)
}

// Contacts lists received contact messages
func (s *Server) Contacts() []apiclient.Contact { return s.contacts.list() }

// Enrollments returns every stored application in insertion order
func (s *Server) Enrollments() []apiclient.Enrollment { return s.enrollments.list() }

// Enrollment returns a stored enrollment
func (s *Server) Enrollment(id string) (apiclient.Enrollment, bool) { return s.enrollments.get(id) }

// Product returns a stored product
func (s *Server) Product(id string) (apiclient.Product, bool) { return s.products.get(id) }

type principal struct {
	user  users.User
	token string
}

// authenticate resolves the bearer token or writes a 401
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*principal, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return nil, false
	}
	c, err := s.parseToken(parts[1])
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired token")
		return nil, false
	}
	acc, err := s.users.getByID(c.Subject)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unknown account")
		return nil, false
	}
	return &principal{user: acc.user, token: parts[1]}, true
}

func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	p, ok := s.authenticate(w, r)
	if !ok {
		return false
	}
	if !p.user.IsAdmin() {
		writeError(w, http.StatusForbidden, "admin role required")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, map[string]any{"data": data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
