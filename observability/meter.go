package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scenedi/errors"
	"github.com/kbukum/scenedi/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"service", config.ServiceName,
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metric names recorded by InjectionMetrics.
const (
	MetricResolveTotal    = "di.resolve.total"
	MetricResolveDuration = "di.resolve.duration"
	MetricInjectTotal     = "di.inject.total"
	MetricErrorTotal      = "di.error.total"
)

// InjectionMetrics records registry resolutions and tree injections. It
// satisfies di.Observer and is installed with di.WithObserver.
type InjectionMetrics struct {
	resolveTotal    metric.Int64Counter
	resolveDuration metric.Float64Histogram
	injectTotal     metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewInjectionMetrics creates the metric instruments on meter.
func NewInjectionMetrics(meter metric.Meter) (*InjectionMetrics, error) {
	resolveTotal, err := meter.Int64Counter(MetricResolveTotal,
		metric.WithDescription("Total number of produced values by strategy"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResolveTotal, err)
	}

	resolveDuration, err := meter.Float64Histogram(MetricResolveDuration,
		metric.WithDescription("Duration of resolutions in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricResolveDuration, err)
	}

	injectTotal, err := meter.Int64Counter(MetricInjectTotal,
		metric.WithDescription("Total number of injected nodes"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricInjectTotal, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Total resolution and injection errors by code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	return &InjectionMetrics{
		resolveTotal:    resolveTotal,
		resolveDuration: resolveDuration,
		injectTotal:     injectTotal,
		errorTotal:      errorTotal,
	}, nil
}

// ObserveResolve records one produced value.
func (m *InjectionMetrics) ObserveResolve(ctx context.Context, key, strategy string, d time.Duration, err error) {
	status := statusOf(err)
	m.resolveTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStrategy, strategy),
		attribute.String(AttrStatus, status),
	))
	m.resolveDuration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String(AttrStrategy, strategy),
	))
	if err != nil {
		m.recordError(ctx, "resolve", err)
	}
}

// ObserveInject records one injected node.
func (m *InjectionMetrics) ObserveInject(ctx context.Context, node string, slots int, err error) {
	m.injectTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStatus, statusOf(err)),
	))
	if err != nil {
		m.recordError(ctx, "inject", err)
	}
}

func (m *InjectionMetrics) recordError(ctx context.Context, operation string, err error) {
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String(AttrCode, code),
	))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
