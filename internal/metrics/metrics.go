package metrics

import (
	"strconv"
	"time"

	"github.com/jrsteele09/baysawarr-web/apiclient"
	"github.com/jrsteele09/baysawarr-web/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks the session lifecycle and page traffic of the web front-end.
type Metrics struct {
	Restores      *prometheus.CounterVec
	Logins        *prometheus.CounterVec
	Logouts       prometheus.Counter
	Invalidations *prometheus.CounterVec
	LoginLimited  prometheus.Counter
	PageDuration  *prometheus.HistogramVec
}

var _ session.Observer = (*Metrics)(nil)

// New registers every metric with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Restores: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baysawarr_session_restores_total",
			Help: "Session restores by outcome",
		}, []string{"outcome"}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baysawarr_logins_total",
			Help: "Login attempts by API status (0 = no response)",
		}, []string{"status"}),
		Logouts: factory.NewCounter(prometheus.CounterOpts{
			Name: "baysawarr_logouts_total",
			Help: "Explicit logouts",
		}),
		Invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "baysawarr_session_invalidations_total",
			Help: "Sessions ended by a 401 from the API, by API path",
		}, []string{"path"}),
		LoginLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "baysawarr_login_rate_limited_total",
			Help: "Login submissions rejected by the rate limiter",
		}),
		PageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "baysawarr_page_duration_seconds",
			Help:    "Duration of page requests",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "code"}),
	}
}

// RestoreFinished records a restore outcome
func (m *Metrics) RestoreFinished(outcome session.RestoreOutcome) {
	m.Restores.WithLabelValues(string(outcome)).Inc()
}

// LoginFinished records a login attempt
func (m *Metrics) LoginFinished(err error) {
	status := "200"
	if err != nil {
		status = strconv.Itoa(apiclient.StatusCode(err))
	}
	m.Logins.WithLabelValues(status).Inc()
}

// LoggedOut records an explicit logout
func (m *Metrics) LoggedOut() {
	m.Logouts.Inc()
}

// SessionInvalidated is the API client's invalidation hook
func (m *Metrics) SessionInvalidated(path string) {
	m.Invalidations.WithLabelValues(path).Inc()
}

// ObservePage records the duration of a page request.
// Call with time.Now() at the start of the request.
func (m *Metrics) ObservePage(method string, code int, start time.Time) {
	m.PageDuration.WithLabelValues(method, strconv.Itoa(code)).Observe(time.Since(start).Seconds())
}
