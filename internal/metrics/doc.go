// ABOUTME: Metrics package documentation
// ABOUTME: Describes the Prometheus sampler collector
// Package metrics exposes sample lifecycle metrics to Prometheus.
package metrics
