package config_test

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/baysawarr-web/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.GetPort())
	require.Equal(t, "DEV", cfg.GetEnv())
	require.Equal(t, 30*time.Second, cfg.GetAPITimeout())
	require.Equal(t, 2*time.Minute, cfg.GetAPIUploadTimeout())
	require.Equal(t, config.SessionBackendCookie, cfg.GetSessionBackend())
	require.Equal(t, 7*24*time.Hour, cfg.GetSessionTTL())
	require.False(t, cfg.GetCookieSecure())
	require.Equal(t, 5, cfg.GetLoginBurst())
	require.Empty(t, cfg.GetCorsPolicy().Origins)
	require.Empty(t, cfg.GetTrustedProxies())
}

func TestTrustedProxies(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.1, bogus, ::1")

	cfg, err := config.Load("")
	require.NoError(t, err)

	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.0.2.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, cfg.GetTrustedProxies())
}

func TestFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
api_url: https://api.baysawarr.test/api
api_timeout: 10s
session_backend: redis
cookie_secure: "true"
cors_origins: https://a.test, https://b.test, *
`), 0o600))

	t.Setenv("PORT", "9100")
	t.Setenv("LOGIN_BURST", "2")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9100", cfg.GetPort())
	require.Equal(t, "https://api.baysawarr.test/api", cfg.GetAPIURL())
	require.Equal(t, 10*time.Second, cfg.GetAPITimeout())
	require.Equal(t, config.SessionBackendRedis, cfg.GetSessionBackend())
	require.True(t, cfg.GetCookieSecure())
	require.Equal(t, 2, cfg.GetLoginBurst())

	cors := cfg.GetCorsPolicy()
	origin, creds := cors.AllowOrigin("https://b.test")
	require.Equal(t, "https://b.test", origin)
	require.True(t, creds)
	origin, creds = cors.AllowOrigin("https://elsewhere.test")
	require.Equal(t, "*", origin)
	require.False(t, creds)
}

func TestMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
