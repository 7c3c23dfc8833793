package game

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vovakirdan/toontrek/internal/telemetry"
)

// AdvanceRound plays one full round, reading input from in and reporting
// to out until the round ends. Invalid input is retried. A round left
// unfinished by an input error is picked up again by the next call.
func (s *Session) AdvanceRound(ctx context.Context, in LineReader, out Reporter) (Outcome, error) {
	tracer := telemetry.Tracer("game")
	ctx, span := tracer.Start(ctx, "game.round")
	defer span.End()

	span.SetAttributes(
		attribute.String("map", s.m.Name()),
		attribute.Int("round", s.rounds+1),
		attribute.String("location", s.toon.Location().Name()),
	)

	if s.phase != phaseAwaitMove && s.phase != phaseAwaitThrow {
		msgs, err := s.Begin()
		if err != nil {
			return s.fail(span, err)
		}
		if err := out.Report(msgs...); err != nil {
			return s.fail(span, err)
		}
	}

	span.SetAttributes(
		attribute.Bool("near_cog", s.nearCog),
		attribute.Bool("near_banana", s.nearBanana),
		attribute.Bool("near_black_hole", s.nearBlackHole),
	)

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return s.fail(span, err)
		}

		line, err := in.ReadLine(s.Prompt())
		if err != nil {
			return s.fail(span, err)
		}
		attempts++

		step, err := s.Submit(line)
		if rerr := out.Report(step.Messages...); rerr != nil && err == nil {
			err = rerr
		}
		if err != nil {
			return s.fail(span, err)
		}

		if step.RoundOver {
			span.SetAttributes(
				attribute.Int("inputs", attempts),
				attribute.String("outcome", step.Outcome.String()),
				attribute.Int("pies", s.toon.Pies()),
				attribute.Int("laff", s.toon.Laff().Current),
			)
			return step.Outcome, nil
		}
	}
}

func (s *Session) fail(span trace.Span, err error) (Outcome, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return s.outcome, err
}
