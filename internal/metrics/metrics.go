// Package metrics records per-run pipeline metrics for batch collection.
//
// arframe runs once per asset and exits, so nothing is scraped. The collector
// keeps a private registry and writes it in Prometheus text format to a file
// that a node-exporter textfile collector picks up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Faultbox/arframe/internal/logger"
)

const namespace = "arframe"

// Collector holds the metrics of a single run.
type Collector struct {
	registry *prometheus.Registry

	runsTotal       *prometheus.CounterVec
	diagnostics     *prometheus.CounterVec
	runDuration     *prometheus.GaugeVec
	documentBytes   *prometheus.GaugeVec
	lastSuccessTime prometheus.Gauge
}

// NewCollector creates a collector backed by its own registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Pipeline runs by backend and outcome kind",
			},
			[]string{"backend", "kind"},
		),
		diagnostics: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostics_total",
				Help:      "Non-fatal diagnostics by kind",
			},
			[]string{"kind"},
		),
		runDuration: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of the last run",
			},
			[]string{"backend"},
		),
		documentBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "document_bytes",
				Help:      "Size of the last verified document",
			},
			[]string{"backend", "encoding"},
		),
		lastSuccessTime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix time of the last successful run",
			},
		),
	}
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordRun records one finished run. kind is "OK" for a success or the
// failure kind otherwise.
func (c *Collector) RecordRun(backend, kind string, d time.Duration) {
	c.runsTotal.WithLabelValues(backend, kind).Inc()
	c.runDuration.WithLabelValues(backend).Set(d.Seconds())
	if kind == "OK" {
		c.lastSuccessTime.SetToCurrentTime()
	}
}

// RecordDocument records the size of a verified document.
func (c *Collector) RecordDocument(backend, encoding string, size int64) {
	c.documentBytes.WithLabelValues(backend, encoding).Set(float64(size))
}

// RecordDiagnostic counts a non-fatal diagnostic.
func (c *Collector) RecordDiagnostic(kind string) {
	c.diagnostics.WithLabelValues(kind).Inc()
}

// WriteTextfile writes all metrics to path. An empty path is a no-op.
func (c *Collector) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return err
	}
	logger.Debug("Metrics written", zap.String("path", path))
	return nil
}
