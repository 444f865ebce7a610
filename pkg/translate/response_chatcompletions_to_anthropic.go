package translate

import (
	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
)

// ChatCompletionsToAnthropic implements spec §4.3's ChatCompletions→Anthropic
// non-stream response mapping. Multiple choices are concatenated in order;
// finish_reason precedence is tool_calls over the first choice's own value.
func ChatCompletionsToAnthropic(resp *chatcompletions.Response, requestID string) (*anthropicmsg.Response, []Warning) {
	var warnings []Warning
	var blocks []anthropicmsg.ContentBlock
	finishReason := ""
	if len(resp.Choices) > 0 {
		finishReason = resp.Choices[0].FinishReason
	}

	for _, choice := range resp.Choices {
		msg := choice.Message

		// Canonical order: thinking -> text -> tool_use.
		if msg.ReasoningText != "" || msg.ReasoningOpaque != "" {
			blocks = append(blocks, anthropicmsg.ThinkingBlock{
				Thinking:  msg.ReasoningText,
				Signature: msg.ReasoningOpaque,
			})
		}
		if text, ok := msg.Content.(string); ok && text != "" {
			blocks = append(blocks, anthropicmsg.TextBlock{Text: text})
		}
		for _, tc := range msg.ToolCalls {
			input, w := ParseFunctionCallArguments(tc.Function.Arguments)
			warnings = append(warnings, w...)
			blocks = append(blocks, anthropicmsg.ToolUseBlock{
				ID:    tc.ID,
				Name:  tc.Function.Name,
				Input: input,
			})
			finishReason = "tool_calls"
		}
	}

	out := &anthropicmsg.Response{
		ID:         requestID,
		Type:       "message",
		Role:       "assistant",
		Model:      resp.Model,
		Content:    blocks,
		StopReason: chatCompletionsFinishReasonToAnthropicStopReason(finishReason),
	}

	if resp.Usage != nil {
		cached := 0
		if resp.Usage.PromptTokensDetails != nil {
			cached = resp.Usage.PromptTokensDetails.CachedTokens
		}
		out.Usage = anthropicmsg.Usage{
			InputTokens:  resp.Usage.PromptTokens - cached,
			OutputTokens: resp.Usage.CompletionTokens,
		}
		if resp.Usage.PromptTokensDetails != nil && cached > 0 {
			out.Usage.CacheReadInputTokens = &cached
		}
	}

	return out, warnings
}

func chatCompletionsFinishReasonToAnthropicStopReason(reason string) *string {
	var mapped string
	switch reason {
	case "tool_calls":
		mapped = "tool_use"
	case "length":
		mapped = "max_tokens"
	case "content_filter":
		mapped = "end_turn"
	case "stop", "":
		mapped = "end_turn"
	default:
		mapped = "end_turn"
	}
	return &mapped
}
