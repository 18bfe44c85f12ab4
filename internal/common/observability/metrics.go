// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"magick-cards/internal/common/config"
	"magick-cards/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability owns the meter and tracer providers of the process. A zero
// value is usable; every Record method is a no-op until New succeeds.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer

	recommendations       otelmetric.Int64Counter
	recommendationLatency otelmetric.Float64Histogram
	storageOps            otelmetric.Int64Counter
}

type Option func(*options)

type options struct {
	registerer prometheus.Registerer
}

// WithRegisterer exports otel metrics through reg instead of the default
// prometheus registry.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

func New(cfg config.ObservabilityConfig, log logger.Logger, opts ...Option) *Observability {
	log = logger.ForComponent(log, "observability")

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	promOpts := []otelprom.Option{}
	if o.registerer != nil {
		promOpts = append(promOpts, otelprom.WithRegisterer(o.registerer))
	}

	exporter, err := otelprom.New(promOpts...)
	if err != nil {
		log.Error("failed to create prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	provider := metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res))
	otel.SetMeterProvider(provider)

	tpOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	if cfg.JaegerEndpoint != "" {
		jexp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.JaegerEndpoint)))
		if err != nil {
			log.Warn("jaeger exporter disabled", map[string]interface{}{
				"endpoint": cfg.JaegerEndpoint,
				"error":    err,
			})
		} else {
			tpOpts = append(tpOpts, sdktrace.WithBatcher(jexp))
		}
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)

	meter := provider.Meter(cfg.ServiceName)

	recommendations, _ := meter.Int64Counter(
		"recommendations.served",
		otelmetric.WithDescription("Number of recommendation requests served"),
	)

	recommendationLatency, _ := meter.Float64Histogram(
		"recommendations.duration",
		otelmetric.WithDescription("Recommendation request duration"),
		otelmetric.WithUnit("ms"),
	)

	storageOps, _ := meter.Int64Counter(
		"storage.operations",
		otelmetric.WithDescription("Number of persistent store operations"),
	)

	return &Observability{
		meterProvider:         provider,
		tracerProvider:        tracerProvider,
		meter:                 meter,
		tracer:                tracerProvider.Tracer(cfg.ServiceName),
		recommendations:       recommendations,
		recommendationLatency: recommendationLatency,
		storageOps:            storageOps,
	}
}

// Tracer returns the process tracer, or the global one when New was not used.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return otel.Tracer("magick")
	}
	return o.tracer
}

func (o *Observability) RecordRecommendation(ctx context.Context, duration time.Duration, outcome string, results int) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.Int("results", results),
	)
	if o.recommendations != nil {
		o.recommendations.Add(ctx, 1, attrs)
	}
	if o.recommendationLatency != nil {
		o.recommendationLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) RecordStorageOperation(ctx context.Context, op, outcome string) {
	if o == nil || o.storageOps == nil {
		return
	}
	o.storageOps.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
