package translate

import (
	"strings"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

// ResponsesToAnthropic implements spec §4.3's Responses→Anthropic non-stream
// response mapping.
func ResponsesToAnthropic(resp *responses.Response, requestID, model string) (*anthropicmsg.Response, []Warning) {
	var warnings []Warning
	var blocks []anthropicmsg.ContentBlock

	for _, item := range resp.Output {
		switch item.Type {
		case "reasoning":
			text := aggregateReasoningText(item)
			block := anthropicmsg.ThinkingBlock{Thinking: text}
			if item.EncryptedContent != "" {
				block.Signature = item.EncryptedContent
			}
			blocks = append(blocks, block)

		case "function_call":
			args, w := ParseFunctionCallArguments(item.Arguments)
			warnings = append(warnings, w...)
			id := item.CallID
			if id == "" {
				id = item.ID
			}
			blocks = append(blocks, anthropicmsg.ToolUseBlock{ID: id, Name: item.Name, Input: args})

		case "function_call_output":
			if s, ok := item.Output.(string); ok && s != "" {
				blocks = append(blocks, anthropicmsg.TextBlock{Text: s})
			}

		case "message":
			var sb strings.Builder
			for _, part := range item.Content {
				switch part.Type {
				case "output_text":
					sb.WriteString(part.Text)
				case "refusal":
					sb.WriteString(part.Refusal)
				}
			}
			if sb.Len() > 0 {
				blocks = append(blocks, anthropicmsg.TextBlock{Text: sb.String()})
			}
		}
	}

	if len(blocks) == 0 && resp.OutputText != "" {
		blocks = append(blocks, anthropicmsg.TextBlock{Text: resp.OutputText})
	}

	incompleteReason := ""
	if resp.IncompleteDetails != nil {
		incompleteReason = resp.IncompleteDetails.Reason
	}

	out := &anthropicmsg.Response{
		ID:         requestID,
		Type:       "message",
		Role:       "assistant",
		Model:      model,
		Content:    blocks,
		StopReason: AnthropicStopReasonFromResponses(resp.Status, incompleteReason),
	}
	if resp.Usage != nil {
		out.Usage = anthropicmsg.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		}
	}

	return out, warnings
}

// aggregateReasoningText joins a reasoning item's summary parts (each part's
// text, falling back to its thinking and then its reasoning field) and the
// item's own Text field with newlines, trimmed. OutputItem carries no
// separate reasoning array and no top-level thinking field, so neither is
// read.
func aggregateReasoningText(item responses.OutputItem) string {
	var parts []string
	for _, s := range item.Summary {
		text := s.Text
		if text == "" {
			text = s.Thinking
		}
		if text == "" {
			text = s.Reasoning
		}
		if text != "" {
			parts = append(parts, text)
		}
	}
	if item.Text != "" {
		parts = append(parts, item.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
