package mq

import (
	"github.com/twmb/franz-go/plugin/kotel"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("internal/storage/mq")

// newKafkaHooks returns the franz-go hooks that trace every produced and
// consumed record and carry the trace context in record headers. It reads the
// global provider and propagator, so call it after the tracer is initialized.
func newKafkaHooks() *kotel.Tracer {
	return kotel.NewTracer(
		kotel.TracerProvider(otel.GetTracerProvider()),
		kotel.TracerPropagator(otel.GetTextMapPropagator()),
	)
}
