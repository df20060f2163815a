package session_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/internal/mockapi"
	"github.com/jrsteele09/baysawarr-web/navigation"
	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/jrsteele09/baysawarr-web/users"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu         sync.Mutex
	meCalls    int
	loginCalls int
	me         func(ctx context.Context) (*users.User, error)
	login      func(ctx context.Context, email, password string) (*apiclient.LoginResult, error)
}

func (f *fakeAPI) Me(ctx context.Context) (*users.User, error) {
	f.mu.Lock()
	f.meCalls++
	f.mu.Unlock()
	return f.me(ctx)
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*apiclient.LoginResult, error) {
	f.mu.Lock()
	f.loginCalls++
	f.mu.Unlock()
	return f.login(ctx, email, password)
}

func (f *fakeAPI) MeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.meCalls
}

var awa = &users.User{ID: "u-awa", Email: "a@b.com", FirstName: "Awa", LastName: "Diop", Role: users.RoleMember}

func waitReady(t *testing.T, s *session.Store) session.State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := s.Wait(ctx)
	require.NoError(t, err)
	return st
}

func TestNewStore_InitialState(t *testing.T) {
	s := session.NewStore(&fakeAPI{}, storage.NewMemory(), &navigation.Recorder{})
	st := s.Snapshot()
	require.True(t, st.IsLoading)
	require.Nil(t, st.User)
	require.Empty(t, st.Token)
	require.False(t, st.Authenticated())
}

func TestRestore_NoTokenMakesNoCall(t *testing.T) {
	tests := []struct {
		name  string
		token *string
	}{
		{"absent", nil},
		{"empty", ptr("")},
		{"undefined", ptr("undefined")},
		{"null", ptr("null")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persisted := storage.NewMemory()
			if tt.token != nil {
				require.NoError(t, persisted.Set(context.Background(), storage.KeyToken, *tt.token))
			}
			api := &fakeAPI{}
			s := session.NewStore(api, persisted, &navigation.Recorder{})
			s.Mount(context.Background())

			st := waitReady(t, s)
			require.False(t, st.IsLoading)
			require.False(t, st.Authenticated())
			require.Zero(t, api.MeCalls())
		})
	}
}

func TestRestore_NeverFails(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"unauthorized", &apiclient.APIError{StatusCode: 401}},
		{"server error", &apiclient.APIError{StatusCode: 500}},
		{"network", apperrors.ErrNetwork},
		{"malformed identity", apperrors.ErrMalformedIdentity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persisted := storage.NewMemory()
			require.NoError(t, storage.SaveSession(context.Background(), persisted, "abc123", awa))
			api := &fakeAPI{me: func(context.Context) (*users.User, error) { return nil, tt.err }}

			s := session.NewStore(api, persisted, &navigation.Recorder{})
			s.Restore(context.Background())

			st := s.Snapshot()
			require.False(t, st.IsLoading)
			require.Nil(t, st.User)
			require.Empty(t, st.Token)
			require.Empty(t, persisted.Snapshot())
		})
	}
}

func TestMount_RestoresOnce(t *testing.T) {
	persisted := storage.NewMemory()
	require.NoError(t, persisted.Set(context.Background(), storage.KeyToken, "abc123"))
	api := &fakeAPI{me: func(context.Context) (*users.User, error) { return awa, nil }}

	s := session.NewStore(api, persisted, &navigation.Recorder{})
	s.Mount(context.Background())
	s.Mount(context.Background())

	st := waitReady(t, s)
	require.True(t, st.Authenticated())
	require.Equal(t, "abc123", st.Token)
	require.Equal(t, 1, api.MeCalls())
}

func TestLogin_Success(t *testing.T) {
	persisted := storage.NewMemory()
	api := &fakeAPI{
		me: func(context.Context) (*users.User, error) { return nil, errors.New("unused") },
		login: func(_ context.Context, email, password string) (*apiclient.LoginResult, error) {
			require.Equal(t, "a@b.com", email)
			require.Equal(t, "secret", password)
			return &apiclient.LoginResult{Token: "xyz", User: awa}, nil
		},
	}
	s := session.NewStore(api, persisted, &navigation.Recorder{})
	s.Mount(context.Background())
	waitReady(t, s)

	ok, err := s.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	st := s.Snapshot()
	require.False(t, st.IsLoading)
	require.Equal(t, "xyz", st.Token)
	require.Equal(t, awa, st.User)

	token, found := storage.LoadToken(context.Background(), persisted)
	require.True(t, found)
	require.Equal(t, "xyz", token)
	user, err := storage.LoadUser(context.Background(), persisted)
	require.NoError(t, err)
	require.Equal(t, awa.ID, user.ID)
}

func TestLogin_FailureLeavesNoPartialState(t *testing.T) {
	persisted := storage.NewMemory()
	require.NoError(t, storage.SaveSession(context.Background(), persisted, "previous", awa))
	before := persisted.Snapshot()

	rejection := &apiclient.APIError{StatusCode: 401, Message: "invalid credentials"}
	api := &fakeAPI{
		me: func(context.Context) (*users.User, error) { return awa, nil },
		login: func(context.Context, string, string) (*apiclient.LoginResult, error) {
			return nil, rejection
		},
	}
	s := session.NewStore(api, persisted, &navigation.Recorder{})
	s.Mount(context.Background())
	stBefore := waitReady(t, s)

	ok, err := s.Login(context.Background(), "a@b.com", "wrong")
	require.False(t, ok)
	require.ErrorIs(t, err, rejection)
	require.Equal(t, 401, apiclient.StatusCode(err))

	require.Equal(t, before, persisted.Snapshot())
	require.Equal(t, stBefore, s.Snapshot())
}

func TestLogout_Idempotent(t *testing.T) {
	run := func(t *testing.T, loggedIn bool) (map[string]string, session.State, *navigation.Recorder) {
		persisted := storage.NewMemory()
		if loggedIn {
			require.NoError(t, storage.SaveSession(context.Background(), persisted, "abc123", awa))
		}
		nav := &navigation.Recorder{}
		api := &fakeAPI{me: func(context.Context) (*users.User, error) { return awa, nil }}
		s := session.NewStore(api, persisted, nav)
		s.Mount(context.Background())
		require.Equal(t, loggedIn, waitReady(t, s).Authenticated())

		s.Logout(context.Background())
		return persisted.Snapshot(), s.Snapshot(), nav
	}

	storedA, stateA, navA := run(t, true)
	storedB, stateB, navB := run(t, false)

	require.Equal(t, storedA, storedB)
	require.Empty(t, storedA)
	require.Equal(t, stateA, stateB)
	locA, _ := navA.Location()
	locB, _ := navB.Location()
	require.Equal(t, navigation.Root, locA)
	require.Equal(t, locA, locB)
}

func TestLogout_Twice(t *testing.T) {
	persisted := storage.NewMemory()
	require.NoError(t, storage.SaveSession(context.Background(), persisted, "abc123", awa))
	nav := &navigation.Recorder{}
	s := session.NewStore(&fakeAPI{me: func(context.Context) (*users.User, error) { return awa, nil }}, persisted, nav)
	s.Restore(context.Background())

	s.Logout(context.Background())
	first := s.Snapshot()
	s.Logout(context.Background())

	require.Equal(t, first, s.Snapshot())
	require.Equal(t, 2, nav.Count())
}

func TestLoginDuringRestore(t *testing.T) {
	persisted := storage.NewMemory()
	require.NoError(t, persisted.Set(context.Background(), storage.KeyToken, "stale"))

	meStarted := make(chan struct{})
	releaseMe := make(chan struct{})
	api := &fakeAPI{
		me: func(context.Context) (*users.User, error) {
			close(meStarted)
			<-releaseMe
			return nil, &apiclient.APIError{StatusCode: 401}
		},
		login: func(context.Context, string, string) (*apiclient.LoginResult, error) {
			return &apiclient.LoginResult{Token: "fresh", User: awa}, nil
		},
	}
	s := session.NewStore(api, persisted, &navigation.Recorder{})
	s.Mount(context.Background())
	<-meStarted

	ok, err := s.Login(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	require.True(t, ok)

	// the restore is still in flight so the store is still loading
	st := s.Snapshot()
	require.True(t, st.IsLoading)
	require.True(t, st.Authenticated())

	close(releaseMe)
	st = waitReady(t, s)

	// the stale restore result must not undo the newer login
	require.False(t, st.IsLoading)
	require.True(t, st.Authenticated())
	require.Equal(t, "fresh", st.Token)
	token, found := storage.LoadToken(context.Background(), persisted)
	require.True(t, found)
	require.Equal(t, "fresh", token)
}

type outcomes chan session.RestoreOutcome

func (o outcomes) RestoreFinished(outcome session.RestoreOutcome) { o <- outcome }
func (o outcomes) LoginFinished(error)                            {}
func (o outcomes) LoggedOut()                                     {}

func TestUnmount_DiscardsLateRestore(t *testing.T) {
	persisted := storage.NewMemory()
	require.NoError(t, storage.SaveSession(context.Background(), persisted, "abc123", awa))

	meStarted := make(chan struct{})
	releaseMe := make(chan struct{})
	api := &fakeAPI{me: func(context.Context) (*users.User, error) {
		close(meStarted)
		<-releaseMe
		return nil, &apiclient.APIError{StatusCode: 401}
	}}
	finished := make(outcomes, 1)
	s := session.NewStore(api, persisted, &navigation.Recorder{}, session.WithObserver(finished))
	s.Mount(context.Background())
	<-meStarted

	s.Unmount()
	select {
	case <-s.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready not released by unmount")
	}

	close(releaseMe)
	require.Equal(t, session.RestoreDiscarded, <-finished)

	st := s.Snapshot()
	require.True(t, st.IsLoading)
	require.Nil(t, st.User)
	require.Len(t, persisted.Snapshot(), 2)

	ok, err := s.Login(context.Background(), "a@b.com", "secret")
	require.False(t, ok)
	require.ErrorIs(t, err, apperrors.ErrUnmounted)
}

func TestSubscribe(t *testing.T) {
	persisted := storage.NewMemory()
	require.NoError(t, persisted.Set(context.Background(), storage.KeyToken, "abc123"))
	release := make(chan struct{})
	api := &fakeAPI{me: func(context.Context) (*users.User, error) {
		<-release
		return awa, nil
	}}
	s := session.NewStore(api, persisted, &navigation.Recorder{})

	updates, cancel := s.Subscribe()
	defer cancel()
	require.True(t, (<-updates).IsLoading)

	s.Mount(context.Background())
	close(release)

	require.Eventually(t, func() bool {
		select {
		case st := <-updates:
			return !st.IsLoading && st.Authenticated()
		default:
			return false
		}
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	_, open := <-updates
	require.False(t, open)
}

func TestProvider(t *testing.T) {
	_, err := session.FromContext(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoProvider)
	require.Panics(t, func() { session.MustFromContext(context.Background()) })

	s := session.NewStore(&fakeAPI{}, storage.NewMemory(), &navigation.Recorder{})
	ctx := session.WithStore(context.Background(), s)
	got, err := session.FromContext(ctx)
	require.NoError(t, err)
	require.Same(t, s, got)
	require.Same(t, s, session.MustFromContext(ctx))
}

// The scenarios below run against the mock API through the real client and transport.

type env struct {
	api       *mockapi.Server
	persisted *storage.Memory
	nav       *navigation.Recorder
	client    *apiclient.Client
	store     *session.Store
}

func newEnv(t *testing.T) *env {
	t.Helper()
	api := mockapi.New(mockapi.Options{})
	require.NoError(t, api.Seed())
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	e := &env{api: api, persisted: storage.NewMemory(), nav: &navigation.Recorder{}}
	e.client = apiclient.New(srv.URL+"/api", e.persisted, e.nav)
	e.store = session.NewStore(e.client, e.persisted, e.nav)
	return e
}

func (e *env) memberID() string {
	for _, u := range e.api.Users() {
		if u.Email == mockapi.DemoMemberEmail {
			return u.ID
		}
	}
	return ""
}

func TestScenario_ColdStartNoToken(t *testing.T) {
	e := newEnv(t)
	e.store.Mount(context.Background())

	st := waitReady(t, e.store)
	require.False(t, st.Authenticated())
	require.Zero(t, e.api.CountRequests("/api/auth/me"))
}

func TestScenario_ColdStartValidToken(t *testing.T) {
	e := newEnv(t)
	token, err := e.api.IssueToken(e.memberID(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, e.persisted.Set(context.Background(), storage.KeyToken, token))

	e.store.Mount(context.Background())
	st := waitReady(t, e.store)

	require.True(t, st.Authenticated())
	require.Equal(t, "Awa", st.User.FirstName)
	require.Equal(t, "Diop", st.User.LastName)
	require.Equal(t, users.RoleMember, st.User.Role)
	require.Zero(t, e.nav.Count())
}

func TestScenario_ColdStartExpiredToken(t *testing.T) {
	e := newEnv(t)
	token, err := e.api.IssueToken(e.memberID(), -time.Minute)
	require.NoError(t, err)
	require.NoError(t, storage.SaveSession(context.Background(), e.persisted, token, awa))

	e.store.Mount(context.Background())
	st := waitReady(t, e.store)

	require.False(t, st.Authenticated())
	require.Empty(t, e.persisted.Snapshot())
	loc, ok := e.nav.Location()
	require.True(t, ok)
	require.Equal(t, navigation.Login, loc)
}

func TestScenario_LoginThenMidSessionExpiry(t *testing.T) {
	e := newEnv(t)
	e.store.Mount(context.Background())
	waitReady(t, e.store)

	ok, err := e.store.Login(context.Background(), mockapi.DemoMemberEmail, mockapi.DemoMemberPassword)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, e.persisted.Snapshot(), 2)

	_, err = e.store.Login(context.Background(), mockapi.DemoMemberEmail, "wrong")
	require.Equal(t, 401, apiclient.StatusCode(err))
	require.Len(t, e.persisted.Snapshot(), 2)
	require.Zero(t, e.nav.Count())

	// the API now rejects the token server-side
	require.NoError(t, e.api.RevokeToken(e.store.Token()))
	_, err = e.client.MyEnrollments(context.Background())
	require.True(t, apiclient.IsUnauthorized(err))

	require.Empty(t, e.persisted.Snapshot())
	loc, ok := e.nav.Location()
	require.True(t, ok)
	require.Equal(t, navigation.Login, loc)
}

func ptr(s string) *string { return &s }
