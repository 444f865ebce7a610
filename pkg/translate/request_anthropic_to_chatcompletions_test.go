package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
)

func TestAnthropicToChatCompletions_SystemStringBecomesSystemMessage(t *testing.T) {
	req := &anthropicmsg.Request{
		Model:     "claude-sonnet-4-20250514",
		System:    "be terse",
		MaxTokens: 100,
		Messages: []anthropicmsg.Message{
			{Role: "user", Content: []anthropicmsg.ContentBlock{anthropicmsg.TextBlock{Text: "hi"}}},
		},
	}

	out, warnings := AnthropicToChatCompletions(req)

	assert.Empty(t, warnings)
	assert.Equal(t, "claude-sonnet-4", out.Model, "dated sonnet-4 variants collapse to the bare alias")
	assert.Len(t, out.Messages, 2)
	assert.Equal(t, chatcompletions.Message{Role: "system", Content: "be terse"}, out.Messages[0])
	assert.Equal(t, "user", out.Messages[1].Role)
	assert.Equal(t, "hi", out.Messages[1].Content)
}

func TestAnthropicToChatCompletions_ToolResultsPrecedeRemainingUserContent(t *testing.T) {
	req := &anthropicmsg.Request{
		Model: "gpt-5",
		Messages: []anthropicmsg.Message{
			{Role: "user", Content: []anthropicmsg.ContentBlock{
				anthropicmsg.ToolResultBlock{ToolUseID: "call_1", Content: "72F"},
				anthropicmsg.TextBlock{Text: "thanks"},
			}},
		},
	}

	out, _ := AnthropicToChatCompletions(req)

	assert.Len(t, out.Messages, 2)
	assert.Equal(t, "tool", out.Messages[0].Role)
	assert.Equal(t, "call_1", out.Messages[0].ToolCallID)
	assert.Equal(t, "72F", out.Messages[0].Content)
	assert.Equal(t, "user", out.Messages[1].Role)
	assert.Equal(t, "thanks", out.Messages[1].Content)
}

func TestAnthropicToChatCompletions_AssistantToolUseBecomesToolCall(t *testing.T) {
	req := &anthropicmsg.Request{
		Model: "gpt-5",
		Messages: []anthropicmsg.Message{
			{Role: "assistant", Content: []anthropicmsg.ContentBlock{
				anthropicmsg.TextBlock{Text: "checking the weather"},
				anthropicmsg.ToolUseBlock{ID: "call_1", Name: "get_weather", Input: map[string]any{"city": "nyc"}},
			}},
		},
	}

	out, warnings := AnthropicToChatCompletions(req)

	assert.Empty(t, warnings)
	msg := out.Messages[0]
	assert.Equal(t, "assistant", msg.Role)
	assert.Equal(t, "checking the weather", msg.Content)
	assert.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "call_1", msg.ToolCalls[0].ID)
	assert.Equal(t, "get_weather", msg.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"city":"nyc"}`, msg.ToolCalls[0].Function.Arguments)
}

func TestAnthropicToChatCompletions_ThinkingBlockBecomesReasoningFields(t *testing.T) {
	req := &anthropicmsg.Request{
		Model: "gpt-5",
		Messages: []anthropicmsg.Message{
			{Role: "assistant", Content: []anthropicmsg.ContentBlock{
				anthropicmsg.ThinkingBlock{Thinking: "let me think", Signature: "sig-1"},
			}},
		},
	}

	out, _ := AnthropicToChatCompletions(req)

	assert.Equal(t, "let me think", out.Messages[0].ReasoningText)
	assert.Equal(t, "sig-1", out.Messages[0].ReasoningOpaque)
}

func TestAnthropicToChatCompletions_ImageContentBecomesPartsListAndWarnsWhenEmptySource(t *testing.T) {
	req := &anthropicmsg.Request{
		Model: "gpt-5",
		Messages: []anthropicmsg.Message{
			{Role: "user", Content: []anthropicmsg.ContentBlock{
				anthropicmsg.TextBlock{Text: "what is this"},
				anthropicmsg.ImageBlock{Source: anthropicmsg.ImageSource{Type: "url", URL: "https://example.com/cat.png"}},
				anthropicmsg.ImageBlock{Source: anthropicmsg.ImageSource{Type: "base64"}},
			}},
		},
	}

	out, warnings := AnthropicToChatCompletions(req)

	parts, ok := out.Messages[0].Content.([]chatcompletions.ContentPart)
	assert.True(t, ok)
	assert.Len(t, parts, 2)
	assert.Equal(t, "text", parts[0].Type)
	assert.Equal(t, "image_url", parts[1].Type)
	assert.Equal(t, "https://example.com/cat.png", parts[1].ImageURL.URL)
	assert.NotEmpty(t, warnings, "a source with neither url nor base64 data should warn")
}

func TestAnthropicToChatCompletions_ToolsAndToolChoiceMapped(t *testing.T) {
	req := &anthropicmsg.Request{
		Model: "gpt-5",
		Tools: []anthropicmsg.Tool{
			{Name: "get_weather", Description: "looks up weather", InputSchema: map[string]any{"type": "object"}},
		},
		ToolChoice: anthropicmsg.ToolChoiceTool{Type: "tool", Name: "get_weather"},
	}

	out, _ := AnthropicToChatCompletions(req)

	assert.Len(t, out.Tools, 1)
	assert.Equal(t, "function", out.Tools[0].Type)
	assert.Equal(t, "get_weather", out.Tools[0].Function.Name)

	choice, ok := out.ToolChoice.(chatcompletions.ToolChoiceFunction)
	assert.True(t, ok)
	assert.Equal(t, "get_weather", choice.Function.Name)
}

func TestAnthropicToChatCompletions_ToolChoiceAnyBecomesRequired(t *testing.T) {
	req := &anthropicmsg.Request{Model: "gpt-5", ToolChoice: anthropicmsg.ToolChoiceAuto{Type: "any"}}

	out, _ := AnthropicToChatCompletions(req)

	assert.Equal(t, "required", out.ToolChoice)
}

func TestAnthropicToChatCompletions_ZeroMaxTokensOmitted(t *testing.T) {
	req := &anthropicmsg.Request{Model: "gpt-5"}

	out, _ := AnthropicToChatCompletions(req)

	assert.Nil(t, out.MaxTokens)
}
