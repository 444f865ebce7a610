package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
)

func TestAnthropicFromChatCompletions_MessageStartUsesConstructorModel(t *testing.T) {
	s := NewAnthropicFromChatCompletions("claude-sonnet-4")

	out := s.HandleChunk(&chatcompletions.StreamChunk{
		ID: "chatcmpl-1", Model: "upstream-internal-name",
		Choices: []chatcompletions.ChunkChoice{{Delta: chatcompletions.Delta{Content: "hi"}}},
	})

	require.NotEmpty(t, out)
	start, ok := out[0].Payload.(anthropicmsg.MessageStart)
	require.True(t, ok)
	assert.Equal(t, "claude-sonnet-4", start.Message.Model, "the client-facing model name should come from the request, not the upstream chunk")
}

func TestAnthropicFromChatCompletions_TextThenToolCallClosesTextBlockFirst(t *testing.T) {
	s := NewAnthropicFromChatCompletions("claude-sonnet-4")

	out := s.HandleChunk(&chatcompletions.StreamChunk{
		ID: "chatcmpl-1",
		Choices: []chatcompletions.ChunkChoice{{Delta: chatcompletions.Delta{Content: "let me check"}}},
	})
	out = append(out, s.HandleChunk(&chatcompletions.StreamChunk{
		Choices: []chatcompletions.ChunkChoice{{Delta: chatcompletions.Delta{ToolCalls: []chatcompletions.ToolCallDelta{
			{Index: 0, ID: "call_1", Function: &chatcompletions.ToolCallFunctionDelta{Name: "get_weather"}},
		}}}},
	})...)

	types := eventTypes(out)
	// message_start, content_block_start(text), content_block_delta(text),
	// content_block_stop(text), content_block_start(tool_use)
	assert.Equal(t, []string{"message_start", "content_block_start", "content_block_delta", "content_block_stop", "content_block_start"}, types)
}

func TestAnthropicFromChatCompletions_FinishClosesAllOpenBlocksAndStops(t *testing.T) {
	s := NewAnthropicFromChatCompletions("claude-sonnet-4")

	out := s.HandleChunk(&chatcompletions.StreamChunk{
		ID: "chatcmpl-1",
		Choices: []chatcompletions.ChunkChoice{{Delta: chatcompletions.Delta{Content: "hi"}}},
	})
	out = append(out, s.HandleChunk(&chatcompletions.StreamChunk{
		Choices: []chatcompletions.ChunkChoice{{FinishReason: "stop"}},
		Usage:   &chatcompletions.Usage{PromptTokens: 10, CompletionTokens: 3},
	})...)

	opens, closes := 0, 0
	for _, e := range out {
		switch e.Type {
		case "content_block_start":
			opens++
		case "content_block_stop":
			closes++
		}
	}
	assert.Equal(t, opens, closes)
	assert.Equal(t, "message_stop", out[len(out)-1].Type)
	assert.True(t, s.messageCompleted)
}

func TestAnthropicFromChatCompletions_FinishReasonMapping(t *testing.T) {
	toolUse := chatCompletionsFinishReasonToAnthropicStopReason("tool_calls")
	require.NotNil(t, toolUse)
	assert.Equal(t, "tool_use", *toolUse)

	length := chatCompletionsFinishReasonToAnthropicStopReason("length")
	require.NotNil(t, length)
	assert.Equal(t, "max_tokens", *length)

	stop := chatCompletionsFinishReasonToAnthropicStopReason("stop")
	require.NotNil(t, stop)
	assert.Equal(t, "end_turn", *stop)
}

func TestAnthropicFromChatCompletions_Run_DoneSentinelEndsStream(t *testing.T) {
	s := NewAnthropicFromChatCompletions("claude-sonnet-4")
	src := newSliceEventSource(
		`{"id":"chatcmpl-1","choices":[{"delta":{"content":"hi"}}]}`,
		"[DONE]",
	)

	var events []anthropicmsg.StreamEvent
	require.NoError(t, s.Run(src, func(ev anthropicmsg.StreamEvent) {
		events = append(events, ev)
	}))

	// No chunk carried a finish_reason, so [DONE] ends the stream with a
	// synthesized error rather than message_stop.
	require.NotEmpty(t, events)
	assert.Equal(t, "error", events[len(events)-1].Type)
}

func TestAnthropicFromChatCompletions_CachedTokensSurfaceOnUsage(t *testing.T) {
	s := NewAnthropicFromChatCompletions("claude-sonnet-4")
	s.HandleChunk(&chatcompletions.StreamChunk{ID: "c1", Choices: []chatcompletions.ChunkChoice{{Delta: chatcompletions.Delta{Content: "hi"}}}})

	out := s.HandleChunk(&chatcompletions.StreamChunk{
		Choices: []chatcompletions.ChunkChoice{{FinishReason: "stop"}},
		Usage: &chatcompletions.Usage{
			PromptTokens: 100, CompletionTokens: 20,
			PromptTokensDetails: &chatcompletions.PromptTokensDetails{CachedTokens: 40},
		},
	})

	var delta anthropicmsg.MessageDelta
	for _, e := range out {
		if e.Type == "message_delta" {
			delta = e.Payload.(anthropicmsg.MessageDelta)
		}
	}
	require.NotNil(t, delta.Usage)
	assert.Equal(t, 60, delta.Usage.InputTokens)
	require.NotNil(t, delta.Usage.CacheReadInputTokens)
	assert.Equal(t, 40, *delta.Usage.CacheReadInputTokens)
}
