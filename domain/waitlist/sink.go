package waitlist

import (
	"context"

	"github.com/akeren/logfox/internal/log"
	"github.com/akeren/logfox/internal/models"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//go:generate mockgen -source=sink.go -destination=mock_sink.go -package=waitlist

// Sink observes submitted signups. Emit is fire-and-forget: it has no result,
// must not block, and must not fail the submission.
type Sink interface {
	Emit(ctx context.Context, signup models.Signup)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, signup models.Signup)

func (f SinkFunc) Emit(ctx context.Context, signup models.Signup) {
	f(ctx, signup)
}

type NopSink struct{}

func (NopSink) Emit(context.Context, models.Signup) {}

// LogSink writes each signup as a structured log line. Nothing else is done
// with the data.
type LogSink struct {
	logger *log.Logger
}

func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Emit(ctx context.Context, signup models.Signup) {
	log.GetLoggerInstanceFromContext(ctx, s.logger).Info("Waitlist signup submitted", signup.LogAttrs()...)
}

// SpanEventSink records the signup as an event on the request's active span.
// The email is left out of span data.
type SpanEventSink struct{}

func (SpanEventSink) Emit(ctx context.Context, signup models.Signup) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.AddEvent("waitlist.signup", trace.WithAttributes(
		attribute.String("waitlist.session_id", signup.SessionID),
		attribute.Int("waitlist.name_length", len(signup.Name)),
	))
}

// MultiSink fans a signup out to every sink in order.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, signup models.Signup) {
	for _, sink := range m {
		if sink != nil {
			sink.Emit(ctx, signup)
		}
	}
}
