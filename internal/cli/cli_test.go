package cli

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/baysawarr-web/internal/mockapi"
	"github.com/stretchr/testify/require"
)

type cliEnv struct {
	api         *mockapi.Server
	url         string
	sessionFile string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	api := mockapi.New(mockapi.Options{})
	require.NoError(t, api.Seed())
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return &cliEnv{
		api:         api,
		url:         srv.URL + "/api",
		sessionFile: filepath.Join(t.TempDir(), "session.json"),
	}
}

func (c *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--api", c.url, "--session-file", c.sessionFile}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestLoginWhoamiLogout(t *testing.T) {
	c := newCLIEnv(t)

	_, _, err := c.run(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)

	out, _, err := c.run(t, "login", "--email", mockapi.DemoMemberEmail, "--password", mockapi.DemoMemberPassword)
	require.NoError(t, err)
	require.Contains(t, out, "Awa Diop")

	// a new invocation restores the session from the file
	out, _, err = c.run(t, "whoami")
	require.NoError(t, err)
	require.Contains(t, out, mockapi.DemoMemberEmail)
	require.Contains(t, out, "member")
	require.Contains(t, out, "+221 77 000 00 00")

	out, _, err = c.run(t, "enrollments")
	require.NoError(t, err)
	require.Contains(t, out, "Diop Karité")
	require.Contains(t, out, "approved")

	out, _, err = c.run(t, "logout")
	require.NoError(t, err)
	require.Contains(t, out, "Déconnecté")

	_, _, err = c.run(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginBadPassword(t *testing.T) {
	c := newCLIEnv(t)

	_, _, err := c.run(t, "login", "--email", mockapi.DemoMemberEmail, "--password", "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "401")

	_, _, err = c.run(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginPromptsForPassword(t *testing.T) {
	c := newCLIEnv(t)

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(bytes.NewBufferString(mockapi.DemoAdminPassword + "\n"))
	cmd.SetArgs([]string{"--api", c.url, "--session-file", c.sessionFile, "login", "--email", mockapi.DemoAdminEmail})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "admin")
}

func TestWhoamiRevokedToken(t *testing.T) {
	c := newCLIEnv(t)
	_, _, err := c.run(t, "login", "--email", mockapi.DemoMemberEmail, "--password", mockapi.DemoMemberPassword)
	require.NoError(t, err)

	// expire every token the mock has issued
	c.api.SetClock(func() time.Time { return time.Now().Add(48 * time.Hour) })

	_, errOut, err := c.run(t, "whoami")
	require.ErrorIs(t, err, errNotLoggedIn)
	require.Contains(t, errOut, "Session expirée")
}
