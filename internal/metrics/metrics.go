// Package metrics exposes the committee engine's Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors updated by the services and the HTTP layer.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	membersAdded       prometheus.Counter
	membersRemoved     prometheus.Counter
	autoAdded          prometheus.Counter
	tenureTransitions  prometheus.Counter
	transitionFailures prometheus.Counter
	archivedMembers    prometheus.Counter
	rosterSize         prometheus.Gauge
	requestDuration    *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		membersAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_members_added_total",
			Help: "number of manual committee assignments created",
		}),
		membersRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_members_removed_total",
			Help: "number of manual committee assignments removed",
		}),
		autoAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_executives_auto_added_total",
			Help: "number of executives added to the ledger on approval",
		}),
		tenureTransitions: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_tenure_transitions_total",
			Help: "number of committed end-of-tenure transitions",
		}),
		transitionFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_tenure_transition_failures_total",
			Help: "number of end-of-tenure transitions rolled back",
		}),
		archivedMembers: factory.NewCounter(prometheus.CounterOpts{
			Name: "committee_archived_members_total",
			Help: "number of roster members copied to the archive",
		}),
		rosterSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "committee_current_roster_size",
			Help: "size of the last computed current committee roster",
		}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "committee_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) MemberAdded() {
	if m == nil {
		return
	}
	m.membersAdded.Inc()
}

func (m *Metrics) MemberRemoved() {
	if m == nil {
		return
	}
	m.membersRemoved.Inc()
}

func (m *Metrics) ExecutiveAutoAdded() {
	if m == nil {
		return
	}
	m.autoAdded.Inc()
}

// TenureEnded records a committed transition that archived n members.
func (m *Metrics) TenureEnded(n int) {
	if m == nil {
		return
	}
	m.tenureTransitions.Inc()
	m.archivedMembers.Add(float64(n))
}

func (m *Metrics) TransitionFailed() {
	if m == nil {
		return
	}
	m.transitionFailures.Inc()
}

func (m *Metrics) ObserveRosterSize(n int) {
	if m == nil {
		return
	}
	m.rosterSize.Set(float64(n))
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
