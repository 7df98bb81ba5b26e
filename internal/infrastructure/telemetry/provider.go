package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
	"go.uber.org/zap"
)

// ServiceVersion is reported on every exported resource.
const ServiceVersion = "1.0.0"

// providerShutdownTimeout bounds the final flush of each provider.
const providerShutdownTimeout = 10 * time.Second

// newResource describes this process to every exporter. Detector failures
// are tolerated; the service attributes are always present.
func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.New(context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithProcessRuntimeName(),
		resource.WithProcessRuntimeVersion(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(ServiceVersion),
		),
	)
	if err != nil && !errors.Is(err, resource.ErrPartialResource) {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// stopProvider runs a provider's Shutdown under providerShutdownTimeout.
// A nil stop means the provider was never started.
func stopProvider(ctx context.Context, logger *zap.Logger, kind string, stop func(context.Context) error) error {
	if stop == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, providerShutdownTimeout)
	defer cancel()

	if err := stop(ctx); err != nil {
		logger.Error("Telemetry provider shutdown failed", zap.String("provider", kind), zap.Error(err))
		return fmt.Errorf("failed to shutdown %s provider: %w", kind, err)
	}
	logger.Info("Telemetry provider stopped", zap.String("provider", kind))
	return nil
}

// announceProvider logs a started export pipeline.
func announceProvider(logger *zap.Logger, kind, service, endpoint string, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("provider", kind),
		zap.String("service_name", service),
		zap.String("collector_endpoint", endpoint),
	}, extra...)
	logger.Info("Telemetry provider started", fields...)
}
