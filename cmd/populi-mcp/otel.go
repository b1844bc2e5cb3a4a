package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// tracingSettings describes where spans go and how the service identifies itself.
type tracingSettings struct {
	Endpoint       string
	Insecure       bool
	ServiceName    string
	ServiceVersion string
}

type shutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// startTracing installs a global TracerProvider exporting to the OTLP gRPC
// endpoint. Without an endpoint nothing is installed and spans stay no-ops.
func startTracing(ctx context.Context, s tracingSettings, logger *slog.Logger) (shutdownFunc, error) {
	if s.Endpoint == "" {
		logger.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled.")
		return noopShutdown, nil
	}

	res, err := serviceResource(s.ServiceName, s.ServiceVersion)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(s.Endpoint, grpc.WithTransportCredentials(transportCredentials(s.Insecure, logger)))
	if err != nil {
		return nil, fmt.Errorf("failed to dial OTLP endpoint %s: %w", s.Endpoint, err)
	}
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create OTLP trace exporter: %w", err), conn.Close())
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	logger.Info("Tracing enabled.", slog.String("endpoint", s.Endpoint), slog.String("service", s.ServiceName))

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), conn.Close())
	}, nil
}

// serviceResource describes this process on every exported span.
func serviceResource(name, version string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceNameKey.String(name),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build tracing resource: %w", err)
	}
	return res, nil
}

func transportCredentials(insecureConn bool, logger *slog.Logger) credentials.TransportCredentials {
	if insecureConn {
		logger.Warn("Using insecure connection for OTLP exporter.")
		return insecure.NewCredentials()
	}
	return credentials.NewClientTLSFromCert(nil, "")
}
