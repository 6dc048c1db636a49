// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the quiz lifecycle. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quizarena"

type Metrics struct {
	registry *prometheus.Registry

	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight prometheus.Gauge

	SessionsCreated  prometheus.Counter
	SessionsExpired  prometheus.Counter
	PlayersJoined    prometheus.Counter
	AnswersGraded    *prometheus.CounterVec
	QuizzesCompleted prometheus.Counter
	CompletionScores prometheus.Histogram
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestCounter: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		}),
		SessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "created_total",
			Help:      "Sessions created",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessions",
			Name:      "expired_total",
			Help:      "Sessions deactivated lazily after their end time",
		}),
		PlayersJoined: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "players",
			Name:      "joined_total",
			Help:      "Player quizzes created by joins",
		}),
		AnswersGraded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "answers",
			Name:      "graded_total",
			Help:      "Answers graded, by outcome",
		}, []string{"correct"}),
		QuizzesCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "players",
			Name:      "completed_total",
			Help:      "Player quizzes completed",
		}),
		CompletionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "players",
			Name:      "completion_score",
			Help:      "Scores of completed player quizzes",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionCreated() {
	if m != nil {
		m.SessionsCreated.Inc()
	}
}

func (m *Metrics) SessionExpired() {
	if m != nil {
		m.SessionsExpired.Inc()
	}
}

func (m *Metrics) PlayerJoined() {
	if m != nil {
		m.PlayersJoined.Inc()
	}
}

func (m *Metrics) AnswerGraded(correct bool) {
	if m == nil {
		return
	}
	label := "false"
	if correct {
		label = "true"
	}
	m.AnswersGraded.WithLabelValues(label).Inc()
}

func (m *Metrics) QuizCompleted(score int) {
	if m != nil {
		m.QuizzesCompleted.Inc()
		m.CompletionScores.Observe(float64(score))
	}
}
