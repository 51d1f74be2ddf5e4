package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// Envelope is one outbound stream entry. Payload is the UTF-8 JSON body.
type Envelope struct {
	Payload []byte
	TraceID string
	Attempt int
}

type Producer interface {
	Enqueue(ctx context.Context, env Envelope) error
	Close() error
}

// EnqueueJSON marshals v and enqueues it as a first attempt.
func EnqueueJSON(ctx context.Context, p Producer, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return p.Enqueue(ctx, Envelope{Payload: payload, Attempt: 1})
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, env Envelope) error {
	attempt := env.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	fields := map[string]any{
		"payload": string(env.Payload),
		"attempt": attempt,
	}

	traceID := env.TraceID
	if traceID == "" {
		if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
			traceID = spanCtx.TraceID().String()
		}
	}
	if traceID != "" {
		fields["trace_id"] = traceID
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Result()
	if err != nil {
		return fmt.Errorf("enqueue to %s: %w", p.stream, err)
	}

	p.logger.DebugContext(ctx, "enqueued message", "stream", p.stream, "message_id", id, "attempt", attempt)
	return nil
}

// Close is a no-op: the redis client is shared and closed by its owner.
func (p *redisProducer) Close() error {
	return nil
}
