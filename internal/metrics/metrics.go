package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Guesses       *prometheus.CounterVec
	ScoresSaved   *prometheus.CounterVec
	StreamsActive prometheus.Gauge
	StreamBytes   prometheus.Counter
	StreamErrors  *prometheus.CounterVec
	Requests      *prometheus.CounterVec
}

// New registers collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "guesses_total",
			Help:      "Guesses by outcome (correct, incorrect or the rejection code).",
		}, []string{"outcome"}),
		ScoresSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Name:      "scores_saved_total",
			Help:      "Leaderboard scores persisted.",
		}, []string{"mode"}),
		StreamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "quiz",
			Subsystem: "audio",
			Name:      "streams_active",
			Help:      "Audio proxy streams in flight.",
		}),
		StreamBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "audio",
			Name:      "bytes_total",
			Help:      "Audio bytes relayed to clients.",
		}),
		StreamErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "audio",
			Name:      "errors_total",
			Help:      "Audio proxy failures by stage.",
		}, []string{"stage"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quiz",
			Subsystem: "http",
			Name:      "responses_total",
			Help:      "API responses by error code (empty on success).",
		}, []string{"code"}),
	}
	reg.MustRegister(m.Guesses, m.ScoresSaved, m.StreamsActive, m.StreamBytes, m.StreamErrors, m.Requests)
	return m
}
