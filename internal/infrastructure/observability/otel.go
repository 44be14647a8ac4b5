package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/medwatch/slot-monitor"

// Metrics holds all application metrics
type Metrics struct {
	RequestCount         metric.Int64Counter
	RequestDuration      metric.Float64Histogram
	CheckCount           metric.Int64Counter
	CheckDuration        metric.Float64Histogram
	UpstreamFailureCount metric.Int64Counter
	NotificationsSent    metric.Int64Counter
	NotificationsHeld    metric.Int64Counter
	CacheHitCount        metric.Int64Counter
	CacheMissCount       metric.Int64Counter
}

// Setup initializes OpenTelemetry
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if err := runtime.Start(); err != nil {
		return nil, err
	}

	shutdown := func(ctx context.Context) error {
		return tracerProvider.Shutdown(ctx)
	}

	return shutdown, nil
}

// InitMetrics initializes application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)

	requestCount, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	checkCount, err := meter.Int64Counter(
		"monitor.check.count",
		metric.WithDescription("Number of user checks run"),
	)
	if err != nil {
		return nil, err
	}

	checkDuration, err := meter.Float64Histogram(
		"monitor.check.duration",
		metric.WithDescription("User check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	upstreamFailureCount, err := meter.Int64Counter(
		"monitor.upstream.failure.count",
		metric.WithDescription("Number of failed upstream fetches"),
	)
	if err != nil {
		return nil, err
	}

	notificationsSent, err := meter.Int64Counter(
		"monitor.notifications.sent",
		metric.WithDescription("Number of notifications dispatched"),
	)
	if err != nil {
		return nil, err
	}

	notificationsHeld, err := meter.Int64Counter(
		"monitor.notifications.suppressed",
		metric.WithDescription("Number of notifications suppressed by the window"),
	)
	if err != nil {
		return nil, err
	}

	cacheHitCount, err := meter.Int64Counter(
		"cache.hit.count",
		metric.WithDescription("Number of cache hits"),
	)
	if err != nil {
		return nil, err
	}

	cacheMissCount, err := meter.Int64Counter(
		"cache.miss.count",
		metric.WithDescription("Number of cache misses"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCount:         requestCount,
		RequestDuration:      requestDuration,
		CheckCount:           checkCount,
		CheckDuration:        checkDuration,
		UpstreamFailureCount: upstreamFailureCount,
		NotificationsSent:    notificationsSent,
		NotificationsHeld:    notificationsHeld,
		CacheHitCount:        cacheHitCount,
		CacheMissCount:       cacheMissCount,
	}, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	tracer := otel.Tracer(instrumentationName)
	return tracer.Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// RecordCheckMetric records one completed user check
func RecordCheckMetric(ctx context.Context, metrics *Metrics, userID int64, newFound int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.Int64("monitor.user_id", userID),
		attribute.Int("monitor.new_found", newFound),
	}

	metrics.CheckCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.CheckDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))
}

// RecordUpstreamFailure records a failed department fetch
func RecordUpstreamFailure(ctx context.Context, metrics *Metrics, departmentID int) {
	metrics.UpstreamFailureCount.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("monitor.department_id", departmentID),
	))
}

// RecordNotification records a dispatched or suppressed notification
func RecordNotification(ctx context.Context, metrics *Metrics, sent bool) {
	if sent {
		metrics.NotificationsSent.Add(ctx, 1)
		return
	}
	metrics.NotificationsHeld.Add(ctx, 1)
}
