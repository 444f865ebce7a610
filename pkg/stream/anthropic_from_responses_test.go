package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

func runEvents(s *AnthropicFromResponses, events []responses.StreamEvent) []anthropicmsg.StreamEvent {
	var out []anthropicmsg.StreamEvent
	for _, ev := range events {
		out = append(out, s.HandleEvent(&ev)...)
	}
	return out
}

func eventTypes(events []anthropicmsg.StreamEvent) []string {
	types := make([]string, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

func TestAnthropicFromResponses_MessageStartEmittedOnceLazily(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.created", Response: &responses.Response{ID: "resp_1", Model: "gpt-5"}},
		{Type: "response.output_text.delta", OutputIndex: 0, ContentIndex: 0, Delta: "hi"},
	})

	messageStarts := 0
	for _, e := range out {
		if e.Type == "message_start" {
			messageStarts++
		}
	}
	assert.Equal(t, 1, messageStarts)
}

func TestAnthropicFromResponses_TextDeltaOpensAndStreamsBlock(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.output_text.delta", OutputIndex: 0, ContentIndex: 0, Delta: "hello"},
		{Type: "response.output_text.delta", OutputIndex: 0, ContentIndex: 0, Delta: " world"},
	})

	types := eventTypes(out)
	assert.Equal(t, []string{"message_start", "content_block_start", "content_block_delta", "content_block_delta"}, types)

	start := out[1].Payload.(anthropicmsg.ContentBlockStart)
	assert.Equal(t, 0, start.Index)
	_, isText := start.ContentBlock.(anthropicmsg.TextBlock)
	assert.True(t, isText)
}

func TestAnthropicFromResponses_EveryOpenedBlockIsClosed(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.output_text.delta", OutputIndex: 0, ContentIndex: 0, Delta: "hi"},
		{Type: "response.completed", Response: &responses.Response{
			ID: "resp_1", Status: "completed",
			Usage: &responses.Usage{InputTokens: 10, OutputTokens: 5},
		}},
	})

	opens, closes := 0, 0
	for _, e := range out {
		switch e.Type {
		case "content_block_start":
			opens++
		case "content_block_stop":
			closes++
		}
	}
	assert.Equal(t, opens, closes, "every content_block_start must be matched by a content_block_stop")
}

func TestAnthropicFromResponses_MessageStopIsLastEvent(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.output_text.delta", OutputIndex: 0, ContentIndex: 0, Delta: "hi"},
		{Type: "response.completed", Response: &responses.Response{ID: "resp_1", Status: "completed"}},
	})

	require.NotEmpty(t, out)
	last := out[len(out)-1]
	assert.Equal(t, "message_stop", last.Type)

	for _, e := range out[:len(out)-1] {
		assert.NotEqual(t, "message_stop", e.Type)
	}
}

func TestAnthropicFromResponses_ToolUseIDRoundTripsFromCallID(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.output_item.added", OutputIndex: 0, Item: &responses.OutputItem{
			Type: "function_call", ID: "item_1", CallID: "call_abc123", Name: "get_weather",
		}},
		{Type: "response.function_call_arguments.delta", OutputIndex: 0, ItemID: "item_1", Delta: `{"loc`},
		{Type: "response.function_call_arguments.done", OutputIndex: 0, ItemID: "item_1", Arguments: `{"location":"nyc"}`},
	})

	var toolUse anthropicmsg.ToolUseBlock
	found := false
	for _, e := range out {
		if start, ok := e.Payload.(anthropicmsg.ContentBlockStart); ok {
			if tu, ok := start.ContentBlock.(anthropicmsg.ToolUseBlock); ok {
				toolUse = tu
				found = true
			}
		}
	}
	require.True(t, found)
	assert.Equal(t, "call_abc123", toolUse.ID)
	assert.Equal(t, "get_weather", toolUse.Name)

	deltaCount := 0
	for _, e := range out {
		if e.Type == "content_block_delta" {
			d := e.Payload.(anthropicmsg.ContentBlockDelta)
			if d.Delta.Type == "input_json_delta" {
				deltaCount++
			}
		}
	}
	assert.Equal(t, 1, deltaCount, "arguments.done should not re-emit a delta once a delta was already seen")
}

func TestAnthropicFromResponses_FunctionCallArgumentsDoneWithoutPriorDeltaEmitsOne(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.output_item.added", OutputIndex: 0, Item: &responses.OutputItem{
			Type: "function_call", ID: "item_1", CallID: "call_1", Name: "noop",
		}},
		{Type: "response.function_call_arguments.done", OutputIndex: 0, ItemID: "item_1", Arguments: `{}`},
	})

	var deltas []anthropicmsg.ContentBlockDelta
	for _, e := range out {
		if e.Type == "content_block_delta" {
			deltas = append(deltas, e.Payload.(anthropicmsg.ContentBlockDelta))
		}
	}
	require.Len(t, deltas, 1)
	assert.Equal(t, `{}`, deltas[0].Delta.PartialJSON)
}

func TestAnthropicFromResponses_PrematureEOFEndsWithErrorEvent(t *testing.T) {
	s := NewAnthropicFromResponses()
	s.HandleEvent(&responses.StreamEvent{Type: "response.output_text.delta", OutputIndex: 0, ContentIndex: 0, Delta: "partial"})

	out := s.handlePrematureEOF()

	require.NotEmpty(t, out)
	assert.Equal(t, "error", out[len(out)-1].Type)

	hasError := false
	for _, e := range out {
		if e.Type == "error" {
			hasError = true
		}
	}
	assert.True(t, hasError)
}

func TestAnthropicFromResponses_PrematureEOFAfterCompletionIsNoop(t *testing.T) {
	s := NewAnthropicFromResponses()
	runEvents(s, []responses.StreamEvent{
		{Type: "response.completed", Response: &responses.Response{ID: "resp_1", Status: "completed"}},
	})

	out := s.handlePrematureEOF()
	assert.Empty(t, out)
}

func TestAnthropicFromResponses_ReasoningItemEmitsSignatureFromEncryptedContent(t *testing.T) {
	s := NewAnthropicFromResponses()

	out := runEvents(s, []responses.StreamEvent{
		{Type: "response.output_item.done", OutputIndex: 0, Item: &responses.OutputItem{
			Type: "reasoning", EncryptedContent: "sig-xyz",
		}},
	})

	hasSignature := false
	for _, e := range out {
		if d, ok := e.Payload.(anthropicmsg.ContentBlockDelta); ok && d.Delta.Type == "signature_delta" {
			assert.Equal(t, "sig-xyz", d.Delta.Signature)
			hasSignature = true
		}
	}
	assert.True(t, hasSignature)
}
