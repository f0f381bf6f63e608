// Package telemetry wires OpenTelemetry traces and metrics around Jira
// fetches.
//
// Nothing is exported unless LEADTIME_OTEL_ENABLED=true. Environment:
//
//	LEADTIME_OTEL_ENABLED=true              turn telemetry on
//	LEADTIME_OTEL_STDOUT=true               also dump spans and metrics to stderr
//	OTEL_EXPORTER_OTLP_ENDPOINT=...         OTLP/HTTP collector for metrics
//	OTEL_EXPORTER_OTLP_METRICS_ENDPOINT=... metrics endpoint, wins over the above
//
// Spans are only ever written to stderr. Without an OTLP endpoint they are
// written there even when LEADTIME_OTEL_STDOUT is unset, so enabling
// telemetry always produces something.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const scope = "github.com/flowmetrics/leadtime"

const (
	stdoutInterval = 15 * time.Second
	otlpInterval   = 30 * time.Second
)

// settings is the telemetry configuration read from the environment.
type settings struct {
	enabled bool
	stderr  bool
	otlpURL string
}

func loadSettings() settings {
	s := settings{
		enabled: os.Getenv("LEADTIME_OTEL_ENABLED") == "true",
		stderr:  os.Getenv("LEADTIME_OTEL_STDOUT") == "true",
	}
	for _, key := range []string{"OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		if v := os.Getenv(key); v != "" {
			s.otlpURL = v
			break
		}
	}
	return s
}

// traceToStderr: spans have no OTLP exporter, so stderr is the fallback.
func (s settings) traceToStderr() bool { return s.stderr || s.otlpURL == "" }

var (
	mu      sync.Mutex
	flushes []func(context.Context) error
)

// Enabled reports whether LEADTIME_OTEL_ENABLED=true.
func Enabled() bool {
	return loadSettings().enabled
}

// Init installs the global tracer and meter providers. With telemetry off
// the providers are no-ops.
func Init(ctx context.Context, serviceName, version string) error {
	s := loadSettings()
	if !s.enabled {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	tp, err := newTracerProvider(s, res)
	if err != nil {
		return fmt.Errorf("telemetry: tracer provider: %w", err)
	}
	mp, err := newMeterProvider(ctx, s, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("telemetry: meter provider: %w", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	mu.Lock()
	flushes = append(flushes, tp.Shutdown, mp.Shutdown)
	mu.Unlock()
	return nil
}

func newTracerProvider(s settings, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	}
	if s.traceToStderr() {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdktrace.WithBatcher(exp))
	}
	return sdktrace.NewTracerProvider(opts...), nil
}

func newMeterProvider(ctx context.Context, s settings, res *resource.Resource) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if s.stderr {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
		if err != nil {
			return nil, err
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(stdoutInterval))))
	}
	if s.otlpURL != "" {
		exp, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(s.otlpURL))
		if err != nil {
			return nil, fmt.Errorf("otlp exporter for %s: %w", s.otlpURL, err)
		}
		opts = append(opts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(otlpInterval))))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// Tracer returns a tracer for name, or for the module scope when name is
// empty.
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = scope
	}
	return otel.Tracer(name)
}

// Meter returns a meter for name, or for the module scope when name is empty.
func Meter(name string) metric.Meter {
	if name == "" {
		name = scope
	}
	return otel.Meter(name)
}

// Shutdown flushes pending spans and metrics. It may be called more than
// once; later calls do nothing.
func Shutdown(ctx context.Context) error {
	mu.Lock()
	fns := flushes
	flushes = nil
	mu.Unlock()

	var errs []error
	for _, fn := range fns {
		errs = append(errs, fn(ctx))
	}
	return errors.Join(errs...)
}
