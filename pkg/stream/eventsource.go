// Package stream implements C4, the stateful stream translator: it consumes
// an upstream event/chunk stream and emits a client-shaped event stream,
// maintaining block indices, tool-call accumulation, reasoning aggregation,
// and end-of-stream usage reconciliation (spec §4.4). Grounded in structure
// on pkg/providers/openresponses/language_model.go's openResponsesStream
// (reader + SSE parser + per-stream mutable state + Next()-driven handler
// switch), generalized from "decode into a provider.StreamChunk" to
// "translate into the client dialect's own event vocabulary".
package stream

import "io"

// RawEvent is one decoded Server-Sent Event record as read off the upstream
// transport: an event type, its data payload, and an optional id. Spec §6's
// external interface describes the upstream event source as yielding exactly
// this shape.
type RawEvent struct {
	Event string
	Data  string
	ID    string
}

// EventSource yields RawEvents one at a time, returning io.EOF when the
// upstream stream ends. Implementations are single-consumer: the translator
// that owns a source must not be driven from more than one goroutine, per
// spec §5's concurrency model.
type EventSource interface {
	Next() (*RawEvent, error)
	io.Closer
}
