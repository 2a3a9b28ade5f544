// Package metrics provides Prometheus-based metrics collection for the
// cleaning service, exposed on a dedicated port.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/inferloop/csvclean/internal/cleaning"
	"github.com/inferloop/csvclean/pkg/constants"
)

// PrometheusMetrics provides Prometheus-based metrics collection
type PrometheusMetrics struct {
	logger   *logrus.Logger
	registry *prometheus.Registry
	server   *http.Server
	config   *PrometheusConfig

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	cleansTotal        *prometheus.CounterVec
	cleanDuration      prometheus.Histogram
	rowsProcessed      prometheus.Counter
	rowsRemoved        prometheus.Counter
	missingHandled     prometheus.Counter
	outliersReplaced   prometheus.Counter
	duplicatesRemoved  prometheus.Counter
	dateColumnsFixed   prometheus.Counter
	reportFallbacksTot prometheus.Counter
}

// PrometheusConfig configures Prometheus metrics
type PrometheusConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Port      int    `json:"port" mapstructure:"port"`
	Path      string `json:"path" mapstructure:"path"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// NewPrometheusMetrics creates a new Prometheus metrics instance
func NewPrometheusMetrics(config *PrometheusConfig, logger *logrus.Logger) (*PrometheusMetrics, error) {
	if config == nil {
		config = getDefaultPrometheusConfig()
	}
	if config.Namespace == "" {
		config.Namespace = "csvclean"
	}
	if logger == nil {
		logger = logrus.New()
	}

	pm := &PrometheusMetrics{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		config:   config,
	}

	pm.initializeMetrics()
	if err := pm.registerMetrics(); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return pm, nil
}

// Start starts the Prometheus metrics server
func (pm *PrometheusMetrics) Start(ctx context.Context) error {
	if !pm.config.Enabled {
		pm.logger.Info("Prometheus metrics disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(pm.config.Path, pm.Handler())

	pm.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", pm.config.Port),
		Handler: mux,
	}

	pm.logger.WithFields(logrus.Fields{
		"port": pm.config.Port,
		"path": pm.config.Path,
	}).Info("Starting Prometheus metrics server")

	go func() {
		if err := pm.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			pm.logger.WithError(err).Error("Prometheus metrics server error")
		}
	}()

	return nil
}

// Stop stops the Prometheus metrics server
func (pm *PrometheusMetrics) Stop(ctx context.Context) error {
	if pm.server == nil {
		return nil
	}

	pm.logger.Info("Stopping Prometheus metrics server")
	return pm.server.Shutdown(ctx)
}

// Handler returns the exposition handler for the registry, for mounting
// on an existing mux.
func (pm *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(pm.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// RecordHTTPRequest records one served HTTP request.
func (pm *PrometheusMetrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	pm.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	pm.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveClean records the outcome of one pipeline run.
func (pm *PrometheusMetrics) ObserveClean(status string, duration time.Duration, summary *cleaning.Summary) {
	pm.cleansTotal.WithLabelValues(status).Inc()
	pm.cleanDuration.Observe(duration.Seconds())

	if summary == nil {
		return
	}
	pm.rowsProcessed.Add(float64(summary.OriginalRows))
	pm.rowsRemoved.Add(float64(summary.RowsRemoved))
	pm.missingHandled.Add(float64(summary.MissingValuesHandled))
	pm.outliersReplaced.Add(float64(summary.OutliersReplaced))
	pm.duplicatesRemoved.Add(float64(summary.DuplicatesRemoved))
	pm.dateColumnsFixed.Add(float64(summary.DateColumnsFixed))
}

// RecordReportFallback records a report that degraded to the local
// fallback path.
func (pm *PrometheusMetrics) RecordReportFallback() {
	pm.reportFallbacksTot.Inc()
}

// GetRegistry returns the Prometheus registry
func (pm *PrometheusMetrics) GetRegistry() *prometheus.Registry {
	return pm.registry
}

func (pm *PrometheusMetrics) initializeMetrics() {
	namespace := pm.config.Namespace

	pm.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	pm.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	pm.cleansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cleans_total",
			Help:      "Total number of cleaning runs by status",
		},
		[]string{"status"},
	)

	pm.cleanDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clean_duration_seconds",
			Help:      "Cleaning run duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)

	pm.rowsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "Total number of input rows processed",
		},
	)

	pm.rowsRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_removed_total",
			Help:      "Total number of rows removed during cleaning",
		},
	)

	pm.missingHandled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_values_handled_total",
			Help:      "Total number of missing values imputed",
		},
	)

	pm.outliersReplaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outliers_replaced_total",
			Help:      "Total number of outlier values replaced",
		},
	)

	pm.duplicatesRemoved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicates_removed_total",
			Help:      "Total number of duplicate rows removed",
		},
	)

	pm.dateColumnsFixed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "date_columns_fixed_total",
			Help:      "Total number of columns normalized to ISO dates",
		},
	)

	pm.reportFallbacksTot = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_fallbacks_total",
			Help:      "Total number of reports served from the local fallback",
		},
	)
}

func (pm *PrometheusMetrics) registerMetrics() error {
	collectors := []prometheus.Collector{
		pm.httpRequestsTotal,
		pm.httpRequestDuration,
		pm.cleansTotal,
		pm.cleanDuration,
		pm.rowsProcessed,
		pm.rowsRemoved,
		pm.missingHandled,
		pm.outliersReplaced,
		pm.duplicatesRemoved,
		pm.dateColumnsFixed,
		pm.reportFallbacksTot,
	}

	for _, collector := range collectors {
		if err := pm.registry.Register(collector); err != nil {
			return fmt.Errorf("failed to register metric: %w", err)
		}
	}

	return nil
}

func getDefaultPrometheusConfig() *PrometheusConfig {
	return &PrometheusConfig{
		Enabled:   true,
		Port:      constants.DefaultMetricsPort,
		Path:      "/metrics",
		Namespace: "csvclean",
	}
}
