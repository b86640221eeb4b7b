package monitoring

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	meterProvider        *sdkmetric.MeterProvider
	requestCounter       metric.Int64Counter
	latencyHist          metric.Float64Histogram
	dbLatencyHist        metric.Float64Histogram
	dbErrorCounter       metric.Int64Counter
	businessEventCounter metric.Int64Counter
	uploadSizeHist       metric.Int64Histogram
	rateLimitCounter     metric.Int64Counter
	initOnce             sync.Once
	httpHandler          http.Handler
)

// Config captures the setup parameters for the metrics pipeline.
type Config struct {
	ServiceName   string
	ResourceAttrs map[string]string
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and runtime instrumentation.
// Subsequent calls are no-ops.
func Setup(ctx context.Context, cfg Config) (func(context.Context) error, error) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "team-roster"
	}

	attrs := []attribute.KeyValue{semconv.ServiceName(cfg.ServiceName)}
	for k, v := range cfg.ResourceAttrs {
		attrs = append(attrs, attribute.String(k, v))
	}

	var initErr error
	initOnce.Do(func() {
		exp, err := prometheus.New(prometheus.WithoutUnits())
		if err != nil {
			initErr = err
			return
		}

		res, err := resource.Merge(resource.Default(), resource.NewSchemaless(attrs...))
		if err != nil {
			initErr = err
			return
		}

		provider := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(exp),
			sdkmetric.WithResource(res),
		)
		meter := provider.Meter(cfg.ServiceName)

		if initErr = createInstruments(meter); initErr != nil {
			return
		}

		otel.SetMeterProvider(provider)
		meterProvider = provider
		httpHandler = promhttp.Handler()

		// Go runtime metrics (goroutines, GC, etc.)
		_ = runtime.Start(
			runtime.WithMinimumReadMemStatsInterval(10*time.Second),
			runtime.WithMeterProvider(provider),
		)
	})

	if initErr != nil {
		return nil, initErr
	}

	return func(ctx context.Context) error {
		if meterProvider != nil {
			return meterProvider.Shutdown(ctx)
		}
		return nil
	}, nil
}

func createInstruments(meter metric.Meter) error {
	var err error

	if requestCounter, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests processed"),
	); err != nil {
		return err
	}

	if latencyHist, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
	); err != nil {
		return err
	}

	if dbLatencyHist, err = meter.Float64Histogram(
		"db_latency_seconds",
		metric.WithDescription("Member store latency segmented by datastore and operation"),
	); err != nil {
		return err
	}

	if dbErrorCounter, err = meter.Int64Counter(
		"db_errors_total",
		metric.WithDescription("Failed member store operations grouped by error kind"),
	); err != nil {
		return err
	}

	if businessEventCounter, err = meter.Int64Counter(
		"business_events_total",
		metric.WithDescription("Roster event counts by action and outcome"),
	); err != nil {
		return err
	}

	if uploadSizeHist, err = meter.Int64Histogram(
		"upload_size_bytes",
		metric.WithDescription("Size of accepted profile image uploads"),
	); err != nil {
		return err
	}

	rateLimitCounter, err = meter.Int64Counter(
		"rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	)
	return err
}

// Handler returns the Prometheus /metrics handler.
func Handler() http.Handler {
	if httpHandler != nil {
		return httpHandler
	}
	return http.NotFoundHandler()
}

// HTTPMetricsMiddleware records request counts and latency, labelled by chi route pattern.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestCounter == nil || latencyHist == nil {
			next.ServeHTTP(w, r)
			return
		}

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		attrs := attributeSet(r.Method, routeLabel(r), recorder.status)
		requestCounter.Add(r.Context(), 1, metric.WithAttributes(attrs...))
		latencyHist.Record(r.Context(), time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	s.status = statusCode
	s.ResponseWriter.WriteHeader(statusCode)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// routeLabel prefers the matched route pattern so ids do not explode label cardinality
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

func attributeSet(method, route string, status int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	}
}

// RecordDBLatency records member store operation duration and counts failures by kind.
func RecordDBLatency(ctx context.Context, datastore, operation string, duration time.Duration, errKind string) {
	if dbLatencyHist == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("db.name", datastore),
		attribute.String("db.operation", operation),
	}
	dbLatencyHist.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if errKind != "" && dbErrorCounter != nil {
		dbErrorCounter.Add(ctx, 1, metric.WithAttributes(append(attrs, attribute.String("error.kind", errKind))...))
	}
}

// RecordBusinessEvent records roster KPIs such as member creation.
func RecordBusinessEvent(ctx context.Context, action string, success bool) {
	if businessEventCounter == nil {
		return
	}

	businessEventCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("business.action", action),
		attribute.String("business.outcome", outcomeLabel(success)),
	))
}

// RecordUploadSize records the size of an accepted upload.
func RecordUploadSize(ctx context.Context, bytes int64) {
	if uploadSizeHist == nil {
		return
	}
	uploadSizeHist.Record(ctx, bytes)
}

// RecordRateLimitHit counts a request rejected by the rate limiter.
func RecordRateLimitHit(ctx context.Context, route, keyType string) {
	if rateLimitCounter == nil {
		return
	}

	rateLimitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.route", route),
		attribute.String("ratelimit.key", keyType),
	))
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
