package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Exporter names accepted by TracerConfig.ExporterType.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// shutdownTimeout bounds the final span flush.
const shutdownTimeout = 5 * time.Second

// TracerConfig holds OpenTelemetry tracer configuration
type TracerConfig struct {
	ServiceName    string
	ServiceVersion string

	// ExporterType is one of ExporterNone, ExporterStdout, ExporterOTLP
	ExporterType string

	// OTLPEndpoint is the collector address, e.g. localhost:4317
	OTLPEndpoint string

	// SamplingRate is the trace sampling rate (0.0 to 1.0)
	SamplingRate float64

	// Output receives spans for the stdout exporter; defaults to os.Stderr
	Output io.Writer
}

// DefaultTracerConfig returns a configuration with tracing disabled
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		ServiceName:    "projsys",
		ServiceVersion: "0.1.0",
		ExporterType:   ExporterNone,
		SamplingRate:   1.0,
	}
}

// Tracing is the installed tracer provider together with the resources its
// exporter holds open.
type Tracing struct {
	Provider *sdktrace.TracerProvider
	conn     *grpc.ClientConn
}

// SetupTracing builds a tracer provider for config and installs it as the
// global provider. Spans are always recorded; ExporterNone only skips export.
func SetupTracing(ctx context.Context, config TracerConfig) (*Tracing, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Tracing{}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(config.SamplingRate))),
	}

	switch config.ExporterType {
	case ExporterOTLP:
		if config.OTLPEndpoint == "" {
			return nil, errors.New("otlp exporter requires an endpoint")
		}
		t.conn, err = grpc.NewClient(config.OTLPEndpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
		}
		exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(t.conn))
		if err != nil {
			_ = t.conn.Close()
			return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	case ExporterStdout:
		out := config.Output
		if out == nil {
			out = os.Stderr
		}
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithSyncer(exporter))
	case ExporterNone, "":
	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", config.ExporterType)
	}

	t.Provider = sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(t.Provider)
	return t, nil
}

// Shutdown flushes pending spans, stops the provider and closes the
// exporter connection.
func (t *Tracing) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	var errs []error
	if err := t.Provider.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to shutdown tracer provider: %w", err))
	}
	if t.conn != nil {
		if err := t.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close exporter connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// StartSpan starts a span on the named tracer of the global provider
func StartSpan(ctx context.Context, tracerName string, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// AddEvent adds an event to the span carried by ctx
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}
