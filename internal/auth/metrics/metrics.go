package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts authentication outcomes. A nil receiver disables recording.
type Metrics struct {
	logins            prometheus.Counter
	loginFailures     prometheus.Counter
	logouts           prometheus.Counter
	revokedRejections prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_auth_logins_total",
			Help: "Number of successful logins",
		}),
		loginFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_auth_login_failures_total",
			Help: "Number of rejected login attempts",
		}),
		logouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_auth_logouts_total",
			Help: "Number of logouts",
		}),
		revokedRejections: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_auth_revoked_token_rejections_total",
			Help: "Number of requests rejected because the token was revoked",
		}),
	}
}

func (m *Metrics) IncrementLogins() {
	if m == nil {
		return
	}
	m.logins.Inc()
}

func (m *Metrics) IncrementLoginFailures() {
	if m == nil {
		return
	}
	m.loginFailures.Inc()
}

func (m *Metrics) IncrementLogouts() {
	if m == nil {
		return
	}
	m.logouts.Inc()
}

func (m *Metrics) IncrementRevokedRejections() {
	if m == nil {
		return
	}
	m.revokedRejections.Inc()
}
