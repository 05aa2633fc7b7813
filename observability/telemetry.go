package observability

import (
	"context"
	stderrors "errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/scenedi/logger"
)

// Config enables OTLP export for the injector.
type Config struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
}

// Telemetry owns the tracer and meter providers and the injection metrics
// recorded against them.
type Telemetry struct {
	Metrics *InjectionMetrics

	tracer *sdktrace.TracerProvider
	meter  *sdkmetric.MeterProvider
}

// Setup initializes tracing and metrics for service. When cfg is disabled
// the global no-op providers stay in place and Metrics records nothing.
func Setup(ctx context.Context, service, version, environment string, cfg Config) (*Telemetry, error) {
	t := &Telemetry{}
	if cfg.Enabled {
		tc := DefaultTracerConfig(service)
		tc.ServiceVersion = version
		tc.Environment = environment
		tc.Endpoint = cfg.Endpoint
		tc.Insecure = cfg.Insecure
		tc.SampleRate = cfg.SampleRate

		tp, err := InitTracer(ctx, tc)
		if err != nil {
			return nil, err
		}
		t.tracer = tp

		mc := DefaultMeterConfig(service)
		mc.ServiceVersion = version
		mc.Environment = environment
		mc.Endpoint = cfg.Endpoint
		mc.Insecure = cfg.Insecure

		mp, err := InitMeter(ctx, mc)
		if err != nil {
			_ = tp.Shutdown(ctx)
			return nil, err
		}
		t.meter = mp
	}

	metrics, err := NewInjectionMetrics(Meter(defaultTracerName))
	if err != nil {
		_ = t.Shutdown(ctx)
		return nil, fmt.Errorf("creating injection metrics: %w", err)
	}
	t.Metrics = metrics
	return t, nil
}

// Enabled reports whether providers were installed.
func (t *Telemetry) Enabled() bool {
	return t.tracer != nil
}

// Shutdown flushes and stops the providers.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracer != nil {
		if err := t.tracer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
	}
	if t.meter != nil {
		if err := t.meter.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		logger.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, stderrors.Join(errs...).Error()))
	}
	return stderrors.Join(errs...)
}
