// internal/playback/tracing.go
package playback

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/zageabb/reflex-AgentDemo/internal/playback"

// startPlaybackSpan starts a span for one playback.
func startPlaybackSpan(ctx context.Context, scenarioID string, generation uint64, restart bool) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "playback.run")
	span.SetAttributes(
		attribute.String("scenario.id", scenarioID),
		attribute.Int64("playback.generation", int64(generation)),
		attribute.Bool("playback.restart", restart),
	)
	return ctx, span
}

// endPlaybackSpan ends the playback span with its outcome.
func endPlaybackSpan(span trace.Span, outcome Outcome, err error) {
	span.SetAttributes(attribute.String("playback.outcome", string(outcome)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// startTurnSpan starts a span for a single turn.
func startTurnSpan(ctx context.Context, actor string, index int) trace.Span {
	_, span := otel.Tracer(tracerName).Start(ctx, "playback.turn."+actor)
	span.SetAttributes(
		attribute.String("turn.actor", actor),
		attribute.Int("turn.index", index),
	)
	return span
}
