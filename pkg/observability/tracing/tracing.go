package tracing

import (
    "context"
    "os"

    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/codes"
    "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
    sdktrace "go.opentelemetry.io/otel/sdk/trace"
    "go.opentelemetry.io/otel/trace"
)

var enabled bool

// Setup configures a global tracer provider when enable=true. Spans are
// exported to stderr so they do not interleave with the report on stdout.
// It returns a shutdown function which should be deferred.
func Setup(enable bool) (func(context.Context) error, error) {
    enabled = enable
    if !enable {
        return func(context.Context) error { return nil }, nil
    }
    exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint(), stdouttrace.WithWriter(os.Stderr))
    if err != nil {
        return nil, err
    }
    tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
    otel.SetTracerProvider(tp)
    return tp.Shutdown, nil
}

// Span wraps a trace span so callers can annotate the outcome without
// depending on the otel API directly.
type Span struct {
    s trace.Span
}

// StartSpan starts a tracing span if tracing is enabled.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
    if !enabled {
        return ctx, &Span{}
    }
    ctx, span := otel.Tracer("clusterops").Start(ctx, name)
    return ctx, &Span{s: span}
}

// SetStatus annotates the span with the step outcome and an optional error.
func (s *Span) SetStatus(status string, err error) {
    if s.s == nil { return }
    s.s.SetAttributes(attribute.String("clusterops.step.status", status))
    if err != nil {
        s.s.RecordError(err)
        s.s.SetStatus(codes.Error, err.Error())
    }
}

func (s *Span) End() {
    if s.s != nil { s.s.End() }
}
