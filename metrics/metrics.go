// Package metrics exposes the service's prometheus instruments.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scoreboard"

// Recorder is what the services and transport report to.
type Recorder interface {
	GameCreated(format string)
	ResultRecorded(format string, draw bool)
	GameCompleted(format string)
	ObserveOperation(operation string, started time.Time, err error)
	WebSocketConnected()
	WebSocketDisconnected()
}

type PrometheusRecorder struct {
	registry *prometheus.Registry

	gamesCreated   *prometheus.CounterVec
	results        *prometheus.CounterVec
	gamesCompleted *prometheus.CounterVec
	operations     *prometheus.HistogramVec
	wsClients      prometheus.Gauge
}

// NewPrometheusRecorder registers every instrument on registry. A nil
// registry gets a fresh one with the Go and process collectors.
func NewPrometheusRecorder(registry *prometheus.Registry) *PrometheusRecorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	r := &PrometheusRecorder{
		registry: registry,
		gamesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_created_total",
			Help:      "Games started, by format.",
		}, []string{"format"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "match_results_total",
			Help:      "Match results applied, by format and outcome.",
		}, []string{"format", "outcome"}),
		gamesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_completed_total",
			Help:      "Games that reached a terminal state, by format.",
		}, []string{"format"}),
		operations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of game service operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket clients.",
		}),
	}
	registry.MustRegister(r.gamesCreated, r.results, r.gamesCompleted, r.operations, r.wsClients)
	return r
}

func (r *PrometheusRecorder) GameCreated(format string) {
	r.gamesCreated.WithLabelValues(format).Inc()
}

func (r *PrometheusRecorder) ResultRecorded(format string, draw bool) {
	outcome := "win"
	if draw {
		outcome = "draw"
	}
	r.results.WithLabelValues(format, outcome).Inc()
}

func (r *PrometheusRecorder) GameCompleted(format string) {
	r.gamesCompleted.WithLabelValues(format).Inc()
}

func (r *PrometheusRecorder) ObserveOperation(operation string, started time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.operations.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}

func (r *PrometheusRecorder) WebSocketConnected() {
	r.wsClients.Inc()
}

func (r *PrometheusRecorder) WebSocketDisconnected() {
	r.wsClients.Dec()
}

// Handler serves the registry in the prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

type noop struct{}

// NewNoop returns a Recorder that discards everything.
func NewNoop() Recorder {
	return noop{}
}

func (noop) GameCreated(string) {}
func (noop) ResultRecorded(string, bool) {}
func (noop) GameCompleted(string) {}
func (noop) ObserveOperation(string, time.Time, error) {}
func (noop) WebSocketConnected() {}
func (noop) WebSocketDisconnected() {}
