package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Assignments    prometheus.Counter
	Unassignments  prometheus.Counter
	StatusUpdates  prometheus.Counter
	CascadeDeletes prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Assignments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_assignment_assignments_total",
			Help: "Total number of items assigned to an account",
		}),
		Unassignments: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_assignment_unassignments_total",
			Help: "Total number of items returned to the pending pool",
		}),
		StatusUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_assignment_status_updates_total",
			Help: "Total number of status/content updates applied to items",
		}),
		CascadeDeletes: promauto.NewCounter(prometheus.CounterOpts{
			Name: "aos_assignment_cascade_deletes_total",
			Help: "Total number of account cascade deletions processed",
		}),
	}
}

func (m *Metrics) IncrementAssignments() {
	if m != nil {
		m.Assignments.Inc()
	}
}

func (m *Metrics) IncrementUnassignments() {
	if m != nil {
		m.Unassignments.Inc()
	}
}

func (m *Metrics) IncrementStatusUpdates() {
	if m != nil {
		m.StatusUpdates.Inc()
	}
}

func (m *Metrics) IncrementCascadeDeletes() {
	if m != nil {
		m.CascadeDeletes.Inc()
	}
}
