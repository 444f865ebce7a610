package translate

import (
	"strings"

	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

// ResponsesToChatCompletions implements spec §4.3's Responses→ChatCompletions
// non-stream response mapping.
func ResponsesToChatCompletions(resp *responses.Response, requestID string) (*chatcompletions.Response, []Warning) {
	var text strings.Builder
	var reasoning strings.Builder
	var toolCalls []chatcompletions.ToolCall

	for _, item := range resp.Output {
		switch item.Type {
		case "message":
			for _, part := range item.Content {
				if part.Type == "output_text" {
					text.WriteString(part.Text)
				}
			}
		case "function_call":
			toolCalls = append(toolCalls, chatcompletions.ToolCall{
				ID:   item.CallID,
				Type: "function",
				Function: chatcompletions.ToolCallFunction{
					Name:      item.Name,
					Arguments: item.Arguments,
				},
			})
		case "reasoning":
			for _, s := range item.Summary {
				reasoning.WriteString(s.Text)
			}
		}
	}

	msg := chatcompletions.Message{
		Role:      "assistant",
		Content:   text.String(),
		ToolCalls: toolCalls,
	}
	if reasoning.Len() > 0 {
		msg.ReasoningText = reasoning.String()
	}

	out := &chatcompletions.Response{
		ID:     requestID,
		Object: "chat.completion",
		Model:  resp.Model,
		Choices: []chatcompletions.Choice{{
			Index:        0,
			Message:      msg,
			FinishReason: ChatCompletionsFinishReasonFromResponses(len(toolCalls) > 0),
		}},
	}
	if resp.Usage != nil {
		out.Usage = &chatcompletions.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return out, nil
}
