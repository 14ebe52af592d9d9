package tracing

import (
	"context"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"
)

const TraceparentHeader = "traceparent"

// Kafka messages carry W3C trace context whether or not an exporter was
// configured, so consumers can resume the trace that produced the event.
var kafkaPropagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// ContextWithTraceparent resumes a span context persisted in traceparent
// header form. A missing or malformed value leaves ctx untouched.
func ContextWithTraceparent(ctx context.Context, traceparent string) context.Context {
	if traceparent == "" {
		return ctx
	}
	return kafkaPropagator.Extract(ctx, propagation.MapCarrier{TraceparentHeader: traceparent})
}

// InjectKafkaHeaders appends the trace context in ctx to a message's headers.
func InjectKafkaHeaders(ctx context.Context, headers []kafka.Header) []kafka.Header {
	carrier := propagation.MapCarrier{}
	kafkaPropagator.Inject(ctx, carrier)

	for k, v := range carrier {
		headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
	}
	return headers
}

// ExtractKafkaHeaders resumes the trace context carried in message headers.
func ExtractKafkaHeaders(ctx context.Context, headers []kafka.Header) context.Context {
	carrier := propagation.MapCarrier{}
	for _, h := range headers {
		carrier[h.Key] = string(h.Value)
	}
	return kafkaPropagator.Extract(ctx, carrier)
}
