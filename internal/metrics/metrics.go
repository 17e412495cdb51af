// ABOUTME: Prometheus metrics for sample loading
// ABOUTME: Implements the sample observer and serves the metrics endpoint
package metrics

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/sample"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SamplerMetrics contains Prometheus metrics for sample lifecycle events
type SamplerMetrics struct {
	registry *prometheus.Registry

	loadsTotal      *prometheus.CounterVec
	loadErrorsTotal *prometheus.CounterVec
	liveBuffers     prometheus.Gauge
	sampleDuration  prometheus.Histogram
}

// NewSamplerMetrics creates and registers sampler metrics
func NewSamplerMetrics(registry *prometheus.Registry) (*SamplerMetrics, error) {
	m := &SamplerMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register sampler metrics: %w", err)
	}
	return m, nil
}

func (m *SamplerMetrics) initMetrics() {
	m.loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonate_sampler_loads_total",
			Help: "Total number of sample loads",
		},
		[]string{"status"}, // success, error
	)

	m.loadErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resonate_sampler_load_errors_total",
			Help: "Total number of failed sample loads by error kind",
		},
		[]string{"kind"},
	)

	m.liveBuffers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "resonate_sampler_live_buffers",
			Help: "Number of device buffers currently held by loaded samples",
		},
	)

	m.sampleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resonate_sampler_sample_duration_seconds",
			Help:    "Duration of loaded samples",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
	)
}

// Describe implements prometheus.Collector
func (m *SamplerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.loadsTotal.Describe(ch)
	m.loadErrorsTotal.Describe(ch)
	m.liveBuffers.Describe(ch)
	m.sampleDuration.Describe(ch)
}

// Collect implements prometheus.Collector
func (m *SamplerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.loadsTotal.Collect(ch)
	m.loadErrorsTotal.Collect(ch)
	m.liveBuffers.Collect(ch)
	m.sampleDuration.Collect(ch)
}

// Loaded records a successful load
func (m *SamplerMetrics) Loaded(s *sample.SampleData) {
	m.loadsTotal.WithLabelValues("success").Inc()
	m.liveBuffers.Inc()
	m.sampleDuration.Observe(s.Duration().Seconds())
}

// LoadFailed records a failed load
func (m *SamplerMetrics) LoadFailed(kind sample.Kind) {
	m.loadsTotal.WithLabelValues("error").Inc()
	m.loadErrorsTotal.WithLabelValues(kind.String()).Inc()
}

// Released records a released device buffer
func (m *SamplerMetrics) Released(*sample.SampleData) {
	m.liveBuffers.Dec()
}

// Handler returns the HTTP handler for the metrics endpoint
func (m *SamplerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorLog:      log.New(os.Stderr, "metrics handler: ", log.LstdFlags),
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// Serve exposes /metrics on addr in the background
func (m *SamplerMetrics) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		log.Printf("Metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Metrics server error: %v", err)
		}
	}()
	return srv
}
