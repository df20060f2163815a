package metrics_test

import (
	"errors"
	"testing"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/internal/metrics"
	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	m.RestoreFinished(session.RestoreRestored)
	m.RestoreFinished(session.RestoreFailed)
	m.RestoreFinished(session.RestoreFailed)
	m.LoginFinished(nil)
	m.LoginFinished(&apiclient.APIError{StatusCode: 401})
	m.LoginFinished(errors.New("dial tcp: refused"))
	m.SessionInvalidated("/api/auth/me")
	m.LoggedOut()

	require.Equal(t, 2.0, testutil.ToFloat64(m.Restores.WithLabelValues("failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("401")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("0")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Invalidations.WithLabelValues("/api/auth/me")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Logouts))
}
