// Package session is the single authority for "who is logged in right now". A Store is
// built once per application load, restores the persisted session when mounted and then
// serves login, logout and live reads of the current state.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/navigation"
	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AuthAPI is the part of the remote API the store needs
type AuthAPI interface {
	Me(ctx context.Context) (*users.User, error)
	Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error)
}

var _ AuthAPI = (*apiclient.Client)(nil)

// State is a snapshot of the session
type State struct {
	User      *users.User
	Token     string
	IsLoading bool
}

// Authenticated reports whether both identity and credential are present
func (s State) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// RestoreOutcome describes how a restore ended
type RestoreOutcome string

const (
	RestoreAnonymous RestoreOutcome = "anonymous" // nothing persisted
	RestoreRestored  RestoreOutcome = "restored"  // identity confirmed by the API
	RestoreFailed    RestoreOutcome = "failed"    // rejected or malformed, session cleared
	RestoreDiscarded RestoreOutcome = "discarded" // result arrived after unmount or a newer login
)

// Observer receives lifecycle notifications, e.g. for metrics
type Observer interface {
	RestoreFinished(outcome RestoreOutcome)
	LoginFinished(err error)
	LoggedOut()
}

type options struct {
	logger   zerolog.Logger
	observer Observer
}

// Option configures a Store
type Option func(*options)

// WithLogger sets the store's logger
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithObserver registers lifecycle callbacks
func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// Store holds the session of one application load
type Store struct {
	api       AuthAPI
	persisted storage.Store
	nav       navigation.Navigator
	logger    zerolog.Logger
	observer  Observer

	// mu guards the state together with writes to persisted storage so that the
	// in-memory and persisted copies change as one
	mu         sync.Mutex
	state      State
	inFlight   int
	generation uint64
	unmounted  bool
	// initial is set until the restore counted in inFlight by NewStore has started
	initial bool

	mountOnce sync.Once
	cancel    context.CancelFunc
	ready     chan struct{}
	readyOnce sync.Once

	subsMu  sync.Mutex
	subs    map[uint64]chan State
	nextSub uint64
}

// NewStore creates a store in its initial state: loading, no user, no token.
func NewStore(api AuthAPI, persisted storage.Store, nav navigation.Navigator, opts ...Option) *Store {
	o := options{logger: log.Logger}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		api:       api,
		persisted: persisted,
		nav:       nav,
		logger:    o.logger,
		observer:  o.observer,
		state:     State{IsLoading: true},
		inFlight:  1,
		initial:   true,
		ready:     make(chan struct{}),
		subs:      make(map[uint64]chan State),
	}
}

// Mount starts the automatic restore. Only the first call has an effect; the restore
// runs in its own goroutine and Ready is closed when it resolves.
func (s *Store) Mount(ctx context.Context) {
	s.mountOnce.Do(func() {
		s.mu.Lock()
		if s.unmounted {
			s.mu.Unlock()
			return
		}
		ctx, s.cancel = context.WithCancel(ctx)
		s.mu.Unlock()

		go s.Restore(ctx)
	})
}

// Unmount cancels in-flight work. Results that arrive afterwards are discarded and
// Ready is released so nobody waits on a store that will never resolve.
func (s *Store) Unmount() {
	s.mu.Lock()
	s.unmounted = true
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.closeReady()

	s.subsMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subsMu.Unlock()
}

// Ready is closed once the initial restore has resolved (or the store was unmounted)
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// Wait blocks until Ready or ctx is done and returns the current state
func (s *Store) Wait(ctx context.Context) (State, error) {
	select {
	case <-s.ready:
		return s.Snapshot(), nil
	case <-ctx.Done():
		return s.Snapshot(), ctx.Err()
	}
}

func (s *Store) closeReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

// Restore reads the persisted token and confirms it with the API. It never fails:
// a rejected or malformed identity clears the persisted session and leaves the store
// unauthenticated. Mount calls it once; calling it directly is for callers that
// manage the lifecycle themselves.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	if s.initial {
		s.initial = false
	} else {
		s.inFlight++
		s.setLoadingLocked()
	}
	s.mu.Unlock()
	s.restore(ctx)
}

func (s *Store) restore(ctx context.Context) {
	defer s.closeReady()

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	token, ok := storage.LoadToken(ctx, s.persisted)
	if !ok {
		s.finishRestore(ctx, gen, RestoreAnonymous, func() {
			s.state.User, s.state.Token = nil, ""
		})
		return
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		s.finishRestore(ctx, gen, RestoreFailed, func() {
			s.logger.Warn().Err(err).Msg("Session restore failed, continuing logged out")
			if clearErr := storage.ClearSession(ctx, s.persisted); clearErr != nil {
				s.logger.Error().Err(clearErr).Msg("Failed to clear persisted session")
			}
			s.state.User, s.state.Token = nil, ""
		})
		return
	}

	s.finishRestore(ctx, gen, RestoreRestored, func() {
		s.state.User, s.state.Token = user, token
	})
}

// finishRestore applies a restore result unless the store moved on while the
// identity fetch was in flight
func (s *Store) finishRestore(ctx context.Context, gen uint64, outcome RestoreOutcome, apply func()) {
	s.mu.Lock()
	switch {
	case s.unmounted:
		outcome = RestoreDiscarded
	case gen != s.generation || ctx.Err() != nil:
		outcome = RestoreDiscarded
		s.doneLocked()
	default:
		apply()
		s.doneLocked()
	}
	s.mu.Unlock()

	s.logger.Debug().Str("outcome", string(outcome)).Msg("Session restore finished")
	if s.observer != nil {
		s.observer.RestoreFinished(outcome)
	}
}

// Login exchanges credentials with the API. On success the session is persisted and
// true is returned. On failure nothing is changed and the API error is returned as is,
// so the caller can branch on its status code.
func (s *Store) Login(ctx context.Context, email, password string) (bool, error) {
	s.mu.Lock()
	if s.unmounted {
		s.mu.Unlock()
		return false, apperrors.ErrUnmounted
	}
	s.inFlight++
	s.setLoadingLocked()
	s.mu.Unlock()

	result, err := s.api.Login(ctx, email, password)

	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		if s.observer != nil {
			s.observer.LoginFinished(err)
		}
	}()

	if s.unmounted {
		err = apperrors.ErrUnmounted
		return false, err
	}
	if err != nil {
		s.logger.Debug().Err(err).Msg("Login rejected")
		s.doneLocked()
		return false, err
	}

	if err = storage.SaveSession(ctx, s.persisted, result.Token, result.User); err != nil {
		s.doneLocked()
		return false, err
	}
	s.generation++
	s.state.User, s.state.Token = result.User, result.Token
	s.doneLocked()
	s.logger.Info().Str("user_id", result.User.ID).Str("role", string(result.User.Role)).Msg("User logged in")
	return true, nil
}

// Logout drops the session from memory and persisted storage and resets the
// application to its root. It cannot fail and may be called at any time.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.generation++
	if err := storage.ClearSession(ctx, s.persisted); err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear persisted session on logout")
	}
	if s.state.User != nil || s.state.Token != "" {
		s.state.User, s.state.Token = nil, ""
		s.publishLocked()
	}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer.LoggedOut()
	}
	s.nav.Reset(ctx, navigation.Root)
}

// doneLocked ends one in-flight auth operation and publishes the new state
func (s *Store) doneLocked() {
	if s.inFlight > 0 {
		s.inFlight--
	}
	s.setLoadingLocked()
}

func (s *Store) setLoadingLocked() {
	s.state.IsLoading = s.inFlight > 0
	s.publishLocked()
}

// Snapshot returns the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the current identity or nil
func (s *Store) User() *users.User { return s.Snapshot().User }

// Token returns the current bearer token or ""
func (s *Store) Token() string { return s.Snapshot().Token }

// IsLoading reports whether an auth operation is in flight
func (s *Store) IsLoading() bool { return s.Snapshot().IsLoading }
