package commands

import (
	"context"

	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// logSpanProcessor writes every finished span to the logger at debug level.
type logSpanProcessor struct {
	logger zerolog.Logger
}

var _ sdktrace.SpanProcessor = (*logSpanProcessor)(nil)

func (p *logSpanProcessor) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

func (p *logSpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	e := p.logger.Debug()
	if !e.Enabled() {
		return
	}

	for _, kv := range s.Attributes() {
		e = e.Str(string(kv.Key), kv.Value.Emit())
	}
	if status := s.Status(); status.Description != "" {
		e = e.Str("error", status.Description)
	}
	e.Str("span", s.Name()).
		Dur("duration", s.EndTime().Sub(s.StartTime())).
		Msg("storage operation")
}

func (p *logSpanProcessor) Shutdown(context.Context) error {
	return nil
}

func (p *logSpanProcessor) ForceFlush(context.Context) error {
	return nil
}
