package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the process counters. It satisfies the submission-service
// metrics port.
type Recorder struct {
	submissions    *prometheus.CounterVec
	decisions      *prometheus.CounterVec
	pointsCredited prometheus.Counter
	sideEffects    *prometheus.CounterVec
	throttled      *prometheus.CounterVec
}

func NewRecorder(registry prometheus.Registerer) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)
	return &Recorder{
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "submissions_total",
			Help:      "submission attempts by result",
		}, []string{"result"}),
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "decisions_total",
			Help:      "moderation decisions by outcome",
		}, []string{"outcome"}),
		pointsCredited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "points_credited_total",
			Help:      "points credited to members by accepted submissions",
		}),
		sideEffects: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "side_effect_failures_total",
			Help:      "post-commit side effects that failed and were skipped",
		}, []string{"effect"}),
		throttled: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questboard",
			Name:      "http_throttled_total",
			Help:      "requests rejected by the upload throttle",
		}, []string{"route"}),
	}
}

func (r *Recorder) SubmissionCreated() {
	r.submissions.WithLabelValues("created").Inc()
}

func (r *Recorder) SubmissionRejected(reason string) {
	r.submissions.WithLabelValues(reason).Inc()
}

func (r *Recorder) SubmissionDecided(outcome string, points int) {
	r.decisions.WithLabelValues(outcome).Inc()
	if points > 0 {
		r.pointsCredited.Add(float64(points))
	}
}

func (r *Recorder) SideEffectFailed(effect string) {
	r.sideEffects.WithLabelValues(effect).Inc()
}

func (r *Recorder) Throttled(route string) {
	r.throttled.WithLabelValues(route).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
