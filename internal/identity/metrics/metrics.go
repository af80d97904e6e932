package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AccountsRegistered prometheus.Counter
	RoleTransitions    prometheus.Counter
	PasswordResets     prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		AccountsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_identity_accounts_registered_total",
			Help: "Total number of accounts registered",
		}),
		RoleTransitions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_identity_role_transitions_total",
			Help: "Total number of role transitions applied",
		}),
		PasswordResets: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_identity_password_resets_total",
			Help: "Total number of temporary password resets",
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	if m != nil {
		m.AccountsRegistered.Inc()
	}
}

func (m *Metrics) IncrementRoleTransitions() {
	if m != nil {
		m.RoleTransitions.Inc()
	}
}

func (m *Metrics) IncrementPasswordResets() {
	if m != nil {
		m.PasswordResets.Inc()
	}
}
