package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the service's Prometheus collectors. Each Recorder has its own
// registry so tests and several servers in one process do not collide.
type Recorder struct {
	registry      *prometheus.Registry
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	fetches       *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// New registers the dashboard collectors plus the Go runtime and process
// collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantstation_page_builds_total",
				Help: "Dashboard page builds, labeled by page and result.",
			},
			[]string{"page", "result"},
		),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plantstation_page_build_duration_seconds",
				Help:    "Duration of dashboard page builds.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"page"},
		),
		fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantstation_snapshot_fetches_total",
				Help: "Station snapshot fetches, labeled by source and result.",
			},
			[]string{"source", "result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantstation_http_requests_total",
				Help: "HTTP requests processed, labeled by route and status code.",
			},
			[]string{"route", "code"},
		),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.builds,
		r.buildDuration,
		r.fetches,
		r.requests,
	)
	return r
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveBuild records one page build.
func (r *Recorder) ObserveBuild(page string, took time.Duration, err error) {
	r.builds.WithLabelValues(page, result(err)).Inc()
	r.buildDuration.WithLabelValues(page).Observe(took.Seconds())
}

// ObserveFetch records one snapshot fetch.
func (r *Recorder) ObserveFetch(source string, err error) {
	r.fetches.WithLabelValues(source, result(err)).Inc()
}

// ObserveRequest records one served HTTP request.
func (r *Recorder) ObserveRequest(route, code string) {
	r.requests.WithLabelValues(route, code).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
