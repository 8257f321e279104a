package otel

import (
	"context"
	"sync"
	"time"

	eventbus "github.com/hanpama/objectgraph/internal/eventbus"
	events "github.com/hanpama/objectgraph/internal/events"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := newSubscriber(otel.Tracer("objectgraph")).register()

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// subscriber turns resolution events into spans. Events arrive after the
// work they describe, so spans are backdated by the reported duration.
type subscriber struct {
	tracer   trace.Tracer
	runSpans sync.Map // rid -> trace.Span
}

func newSubscriber(tracer trace.Tracer) *subscriber {
	return &subscriber{tracer: tracer}
}

// parent returns ctx carrying the run span of the request, if one is open.
func (s *subscriber) parent(ctx context.Context) context.Context {
	rid, _ := events.RunID(ctx)
	if v, ok := s.runSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func (s *subscriber) finished(ctx context.Context, name string, d time.Duration, attrs ...attribute.KeyValue) trace.Span {
	end := time.Now()
	_, span := s.tracer.Start(s.parent(ctx), name,
		trace.WithTimestamp(end.Add(-d)),
		trace.WithAttributes(attrs...))
	return span
}

func (s *subscriber) register() (unsubscribe func()) {
	unsubs := []func(){
		eventbus.Subscribe[events.RunStart](func(ctx context.Context, e events.RunStart) {
			rid, _ := events.RunID(ctx)
			_, span := s.tracer.Start(ctx, "objectgraph."+e.Command)
			span.SetAttributes(
				attribute.String("objectgraph.schema_type", e.SchemaType),
				attribute.Int64("objectgraph.run_id", rid),
			)
			s.runSpans.Store(rid, span)
		}),

		eventbus.Subscribe[events.RunFinish](func(ctx context.Context, e events.RunFinish) {
			rid, _ := events.RunID(ctx)
			v, ok := s.runSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		eventbus.Subscribe[events.ObjectResolved](func(ctx context.Context, e events.ObjectResolved) {
			span := s.finished(ctx, "objectgraph.object", e.Duration,
				attribute.String("objectgraph.schema", e.Schema),
				attribute.String("objectgraph.node_type", e.NodeType),
				attribute.Int("objectgraph.field_count", e.Fields),
			)
			span.End()
		}),

		eventbus.Subscribe[events.FieldResolved](func(ctx context.Context, e events.FieldResolved) {
			span := s.finished(ctx, "objectgraph.field", e.Duration,
				attribute.String("objectgraph.schema", e.Schema),
				attribute.String("objectgraph.field", e.Field),
				attribute.String("objectgraph.kind", e.Kind),
				attribute.Bool("objectgraph.declared", e.Declared),
			)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
