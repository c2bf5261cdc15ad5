package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

func TestSetupTracing(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled", func(t *testing.T) {
		tp, shutdown, err := SetupTracing(ctx, Options{})
		require.NoError(t, err)
		assert.NotNil(t, tp)
		assert.NoError(t, shutdown(ctx))
		assert.Contains(t, otel.GetTextMapPropagator().Fields(), "traceparent")
	})

	t.Run("Enabled", func(t *testing.T) {
		tp, shutdown, err := SetupTracing(ctx, Options{
			Enabled:     true,
			Endpoint:    "localhost:4318",
			Insecure:    true,
			ServiceName: "rental-gateway",
		})
		require.NoError(t, err)
		assert.IsType(t, &sdktrace.TracerProvider{}, tp)

		_, span := tp.Tracer("test").Start(ctx, "span")
		span.End()
		// Nothing listens on the endpoint; shutdown must still return.
		sctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		_ = shutdown(sctx)
	})
}

func TestNewResource(t *testing.T) {
	res, err := newResource(Options{ServiceName: "rental-gateway", ServiceVersion: "1.2.3"})
	require.NoError(t, err)

	name, ok := res.Set().Value(semconv.ServiceNameKey)
	require.True(t, ok)
	assert.Equal(t, "rental-gateway", name.AsString())
	version, ok := res.Set().Value(semconv.ServiceVersionKey)
	require.True(t, ok)
	assert.Equal(t, "1.2.3", version.AsString())
	assert.Equal(t, resource.Default().SchemaURL(), res.SchemaURL())
}
