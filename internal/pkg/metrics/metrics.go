// Package metrics exposes the Prometheus counters of the tracking pipeline.
//
// All Recorder methods are nil-safe so components can run without metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lead_tracker"

// Event results.
const (
	ResultScored    = "scored"
	ResultDuplicate = "duplicate"
	ResultIgnored   = "ignored"
)

// Recorder holds the pipeline counters registered on one registry.
type Recorder struct {
	registry *prometheus.Registry

	events          *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	softErrors      *prometheus.CounterVec
	tierTransitions *prometheus.CounterVec
	trackResponses  *prometheus.CounterVec
}

// New creates a Recorder on a private registry that also carries the Go
// runtime and process collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newOn(reg)
}

func newOn(reg *prometheus.Registry) *Recorder {
	auto := promauto.With(reg)
	return &Recorder{
		registry: reg,
		events: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Interaction events processed by the scoring engine.",
		}, []string{"event_type", "result"}),
		pointsAwarded: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Lead score points awarded before capping.",
		}),
		softErrors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "soft_errors_total",
			Help:      "Collaborator failures absorbed by the scoring engine.",
		}, []string{"stage"}),
		tierTransitions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_transitions_total",
			Help:      "Persisted lead tier changes.",
		}, []string{"from", "to"}),
		trackResponses: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "track_responses_total",
			Help:      "Tracking endpoint responses by HTTP status.",
		}, []string{"status"}),
	}
}

// Event counts one processed event. Event types outside the scored set are
// folded into "other" to keep label cardinality bounded.
func (r *Recorder) Event(eventType, result string, scored bool) {
	if r == nil {
		return
	}
	if !scored {
		eventType = "other"
	}
	r.events.WithLabelValues(eventType, result).Inc()
}

// Points adds awarded points.
func (r *Recorder) Points(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.pointsAwarded.Add(float64(n))
}

// SoftError counts an absorbed failure at stage.
func (r *Recorder) SoftError(stage string) {
	if r == nil {
		return
	}
	r.softErrors.WithLabelValues(stage).Inc()
}

// TierTransition counts a persisted tier change.
func (r *Recorder) TierTransition(from, to string) {
	if r == nil || from == to {
		return
	}
	r.tierTransitions.WithLabelValues(from, to).Inc()
}

// TrackResponse counts a tracking endpoint response.
func (r *Recorder) TrackResponse(status string) {
	if r == nil {
		return
	}
	r.trackResponses.WithLabelValues(status).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
