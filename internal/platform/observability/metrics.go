package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

// Metrics holds all application metrics
type Metrics struct {
	meter metric.Meter

	// Report serving metrics
	ReportRequests metric.Int64Counter
	ReportDuration metric.Float64Histogram

	// Ads API metrics
	AdsAPICalls    metric.Int64Counter
	AdsAPIDuration metric.Float64Histogram
	QuotaExhausted metric.Int64Counter

	// Response cache metrics
	CacheHits    metric.Int64Counter
	CacheMisses  metric.Int64Counter
	CacheEntries metric.Int64Gauge
	CacheHitRate metric.Float64Gauge

	// Circuit breaker metrics
	CircuitBreakerState metric.Int64Gauge

	// Error metrics
	Errors metric.Int64Counter

	// Prometheus exporter for HTTP handler
	exporter *prometheus.Exporter
}

// NewMetrics creates a new Metrics instance
func NewMetrics(serviceName string, enabled bool) (*Metrics, error) {
	if !enabled {
		return &Metrics{}, nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String("1.0.0"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	m := &Metrics{
		meter:    provider.Meter(serviceName),
		exporter: exporter,
	}

	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return m, nil
}

// initMetrics initializes all metric instruments
func (m *Metrics) initMetrics() error {
	var err error

	m.ReportRequests, err = m.meter.Int64Counter(
		"dashboard.report.requests",
		metric.WithDescription("Total report requests served"),
	)
	if err != nil {
		return err
	}

	m.ReportDuration, err = m.meter.Float64Histogram(
		"dashboard.report.duration",
		metric.WithDescription("Report request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	m.AdsAPICalls, err = m.meter.Int64Counter(
		"dashboard.ads_api.calls",
		metric.WithDescription("Total Google Ads API calls"),
	)
	if err != nil {
		return err
	}

	m.AdsAPIDuration, err = m.meter.Float64Histogram(
		"dashboard.ads_api.duration",
		metric.WithDescription("Google Ads API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	m.QuotaExhausted, err = m.meter.Int64Counter(
		"dashboard.ads_api.quota_exhausted",
		metric.WithDescription("Total quota exhaustion responses from the ads API"),
	)
	if err != nil {
		return err
	}

	m.CacheHits, err = m.meter.Int64Counter(
		"dashboard.cache.hits",
		metric.WithDescription("Total response cache hits"),
	)
	if err != nil {
		return err
	}

	m.CacheMisses, err = m.meter.Int64Counter(
		"dashboard.cache.misses",
		metric.WithDescription("Total response cache misses"),
	)
	if err != nil {
		return err
	}

	m.CacheEntries, err = m.meter.Int64Gauge(
		"dashboard.cache.entries",
		metric.WithDescription("Current number of live response cache entries"),
	)
	if err != nil {
		return err
	}

	m.CacheHitRate, err = m.meter.Float64Gauge(
		"dashboard.cache.hit_rate",
		metric.WithDescription("Response cache hit rate percentage (0-100)"),
	)
	if err != nil {
		return err
	}

	m.CircuitBreakerState, err = m.meter.Int64Gauge(
		"dashboard.circuit_breaker.state",
		metric.WithDescription("Circuit breaker state (0=closed, 1=open, 2=half-open)"),
	)
	if err != nil {
		return err
	}

	m.Errors, err = m.meter.Int64Counter(
		"dashboard.errors",
		metric.WithDescription("Total errors encountered"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordReportRequest records a served report request and whether the
// response cache satisfied it
func (m *Metrics) RecordReportRequest(ctx context.Context, report string, cached bool, duration time.Duration) {
	if m.ReportRequests == nil {
		return
	}

	status := "miss"
	if cached {
		status = "hit"
	}
	attrs := []attribute.KeyValue{
		attribute.String("report", report),
		attribute.String("cache", status),
	}

	m.ReportRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.ReportDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if cached {
		m.CacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("report", report)))
	} else {
		m.CacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("report", report)))
	}
}

// RecordAdsAPICall records a call against the external ads API
func (m *Metrics) RecordAdsAPICall(ctx context.Context, endpoint, status string, duration time.Duration) {
	if m.AdsAPICalls == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	}

	m.AdsAPICalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.AdsAPIDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordQuotaExhausted records a quota exhaustion response
func (m *Metrics) RecordQuotaExhausted(ctx context.Context, customerID string) {
	if m.QuotaExhausted == nil {
		return
	}
	m.QuotaExhausted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("customer_id", customerID),
	))
}

// RecordCacheGauges publishes the cache's current entry count and hit rate
func (m *Metrics) RecordCacheGauges(ctx context.Context, entries int, hitRate float64) {
	if m.CacheEntries == nil {
		return
	}
	m.CacheEntries.Record(ctx, int64(entries))
	m.CacheHitRate.Record(ctx, hitRate)
}

// SetCircuitBreakerState sets circuit breaker state
// 0 = closed, 1 = open, 2 = half-open
func (m *Metrics) SetCircuitBreakerState(ctx context.Context, service string, state int64) {
	if m.CircuitBreakerState == nil {
		return
	}
	m.CircuitBreakerState.Record(ctx, state, metric.WithAttributes(attribute.String("service", service)))
}

// RecordError records an error
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	if m.Errors == nil {
		return
	}
	m.Errors.Add(ctx, 1, metric.WithAttributes(attribute.String("type", errorType)))
}

// Handler returns the HTTP handler for Prometheus metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.Handler()
}
