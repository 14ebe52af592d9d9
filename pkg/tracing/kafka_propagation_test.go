package tracing

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

const sampleTraceparent = "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01"

func TestTraceContextRoundTripsThroughKafkaHeaders(t *testing.T) {
	ctx := ContextWithTraceparent(context.Background(), sampleTraceparent)

	headers := InjectKafkaHeaders(ctx, []kafka.Header{{Key: "event_type", Value: []byte("OrderCreated")}})
	var carried string
	for _, h := range headers {
		if h.Key == TraceparentHeader {
			carried = string(h.Value)
		}
	}
	require.Equal(t, sampleTraceparent, carried)

	resumed := trace.SpanContextFromContext(ExtractKafkaHeaders(context.Background(), headers))
	assert.True(t, resumed.IsValid())
	assert.True(t, resumed.IsRemote())
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", resumed.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", resumed.SpanID().String())
	assert.True(t, resumed.IsSampled())
}

func TestContextWithTraceparentIgnoresMalformedValues(t *testing.T) {
	for _, tp := range []string{"", "garbage", "00-abc-def-01"} {
		ctx := ContextWithTraceparent(context.Background(), tp)
		assert.False(t, trace.SpanContextFromContext(ctx).IsValid(), tp)

		headers := InjectKafkaHeaders(ctx, nil)
		for _, h := range headers {
			assert.NotEqual(t, TraceparentHeader, h.Key)
		}
	}
}
