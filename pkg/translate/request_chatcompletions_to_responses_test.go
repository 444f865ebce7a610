package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

func TestChatCompletionsToResponses_FirstStringSystemMessageBecomesInstructions(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Messages: []chatcompletions.Message{
			{Role: "system", Content: "be terse"},
			{Role: "user", Content: "hi"},
		},
	}

	out, warnings := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	assert.Empty(t, warnings)
	assert.Equal(t, "be terse", out.Instructions)
	require.Len(t, out.Input, 1)
	item, ok := out.Input[0].(responses.MessageItem)
	require.True(t, ok)
	assert.Equal(t, "user", item.Role)
	assert.Equal(t, "hi", item.Content)
}

func TestChatCompletionsToResponses_SecondSystemMessageFallsThroughAsMessageItem(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Messages: []chatcompletions.Message{
			{Role: "system", Content: "be terse"},
			{Role: "system", Content: "also be polite"},
		},
	}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	assert.Equal(t, "be terse", out.Instructions)
	require.Len(t, out.Input, 1)
	item := out.Input[0].(responses.MessageItem)
	assert.Equal(t, "system", item.Role)
}

func TestChatCompletionsToResponses_ToolMessageBecomesFunctionCallOutput(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Messages: []chatcompletions.Message{
			{Role: "tool", ToolCallID: "call_1", Content: "72F"},
		},
	}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	require.Len(t, out.Input, 1)
	item := out.Input[0].(responses.FunctionCallOutputItem)
	assert.Equal(t, "call_1", item.CallID)
	assert.Equal(t, "72F", item.Output)
}

func TestChatCompletionsToResponses_AssistantWithToolCallsEmitsMessageThenFunctionCalls(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Messages: []chatcompletions.Message{
			{Role: "assistant", Content: "checking", ToolCalls: []chatcompletions.ToolCall{
				{ID: "call_1", Function: chatcompletions.ToolCallFunction{Name: "get_weather", Arguments: `{"city":"nyc"}`}},
			}},
		},
	}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	require.Len(t, out.Input, 2)
	_, ok := out.Input[0].(responses.MessageItem)
	assert.True(t, ok)
	call, ok := out.Input[1].(responses.FunctionCallItem)
	require.True(t, ok)
	assert.Equal(t, "get_weather", call.Name)
}

func TestChatCompletionsToResponses_AssistantWithEmptyContentOmitsMessageItem(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Messages: []chatcompletions.Message{
			{Role: "assistant", Content: "", ToolCalls: []chatcompletions.ToolCall{
				{ID: "call_1", Function: chatcompletions.ToolCallFunction{Name: "get_weather", Arguments: "{}"}},
			}},
		},
	}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	require.Len(t, out.Input, 1)
	_, ok := out.Input[0].(responses.FunctionCallItem)
	assert.True(t, ok)
}

func TestChatCompletionsToResponses_UnsupportedContentPartWarns(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Messages: []chatcompletions.Message{
			{Role: "user", Content: []chatcompletions.ContentPart{
				{Type: "audio_url"},
			}},
		},
	}

	_, warnings := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	assert.NotEmpty(t, warnings)
}

func TestChatCompletionsToResponses_ReasoningEffortDefaultsToHighWithoutOverride(t *testing.T) {
	req := &chatcompletions.Request{Model: "gpt-5"}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	require.NotNil(t, out.Reasoning)
	assert.Equal(t, "high", out.Reasoning.Effort)
}

func TestChatCompletionsToResponses_ReasoningEffortOverrideApplied(t *testing.T) {
	req := &chatcompletions.Request{Model: "gpt-5-mini"}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{
		ReasoningEffort: func(model string) string {
			if model == "gpt-5-mini" {
				return "low"
			}
			return ""
		},
	})

	assert.Equal(t, "low", out.Reasoning.Effort)
}

func TestChatCompletionsToResponses_ToolsAndToolChoicePassedThrough(t *testing.T) {
	req := &chatcompletions.Request{
		Model: "gpt-5",
		Tools: []chatcompletions.Tool{
			{Type: "function", Function: chatcompletions.ToolFunction{Name: "get_weather"}},
		},
		ToolChoice: "required",
	}

	out, _ := ChatCompletionsToResponses(req, ChatCompletionsToResponsesOptions{})

	require.Len(t, out.Tools, 1)
	assert.Equal(t, "get_weather", out.Tools[0].Name)
	assert.Equal(t, "required", out.ToolChoice)
}

func TestResponsesPassthrough_ReturnsSameRequestUnchanged(t *testing.T) {
	req := &responses.Request{Model: "gpt-5", Input: "hi"}

	out := ResponsesPassthrough(req)

	assert.Same(t, req, out)
}
