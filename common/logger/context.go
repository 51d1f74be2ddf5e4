package logger

import (
	"context"
	"log/slog"
)

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// Fields flow through context enrichment, so a handler deep in the pipeline logs the
// product, alert and stream message it is working on without threading them by hand.
type LogFields struct {
	ProductID *string // Product whose price changed
	AlertID   *string // Deterministic alert id (fan-out stage)
	MessageID *string // Redis stream message ID
	Stream    *string // Redis stream name
	Component string  // Component name (OTel semantic convention style, e.g., "pricewatch.pipeline.history")
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, new LogFields) LogFields {
	result := existing

	if new.ProductID != nil {
		result.ProductID = new.ProductID
	}
	if new.AlertID != nil {
		result.AlertID = new.AlertID
	}
	if new.MessageID != nil {
		result.MessageID = new.MessageID
	}
	if new.Stream != nil {
		result.Stream = new.Stream
	}
	if new.Component != "" {
		result.Component = new.Component
	}

	return result
}

// attrs renders the populated fields in a stable order.
func (f LogFields) attrs() []slog.Attr {
	var out []slog.Attr
	if f.ProductID != nil {
		out = append(out, slog.String("product_id", *f.ProductID))
	}
	if f.AlertID != nil {
		out = append(out, slog.String("alert_id", *f.AlertID))
	}
	if f.MessageID != nil {
		out = append(out, slog.String("message_id", *f.MessageID))
	}
	if f.Stream != nil {
		out = append(out, slog.String("stream", *f.Stream))
	}
	if f.Component != "" {
		out = append(out, slog.String("component", f.Component))
	}
	return out
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{ProductID: logger.Ptr(id)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen characters, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
