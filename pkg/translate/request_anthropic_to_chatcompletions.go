package translate

import (
	"strings"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/imageutil"
)

// AnthropicToChatCompletions implements spec §4.2's Anthropic→ChatCompletions
// request mapping. Grounded on pkg/providerutils/prompt.converter.go's
// ToOpenAIMessages (content flattening) and pkg/providerutils/tool.converter.go's
// ToOpenAIFormat (tool/tool_choice shape).
func AnthropicToChatCompletions(req *anthropicmsg.Request) (*chatcompletions.Request, []Warning) {
	var warnings []Warning
	out := &chatcompletions.Request{
		Model:     RewriteModelForChatCompletions(req.Model),
		Stream:    req.Stream,
		MaxTokens: intPtr(req.MaxTokens),
	}

	if sysMsg, ok := systemMessageFromAnthropic(req.System); ok {
		out.Messages = append(out.Messages, chatcompletions.Message{Role: "system", Content: sysMsg})
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "user":
			toolResults, remainder := splitToolResults(msg.Content)
			// tool_use -> tool_result -> user content ordering (spec §3 invariant).
			for _, tr := range toolResults {
				out.Messages = append(out.Messages, chatcompletions.Message{
					Role:       "tool",
					Content:    flattenToolResultContent(tr),
					ToolCallID: tr.ToolUseID,
				})
			}
			if len(remainder) > 0 {
				content, w := flattenUserContent(remainder)
				warnings = append(warnings, w...)
				out.Messages = append(out.Messages, chatcompletions.Message{Role: "user", Content: content})
			}

		case "assistant":
			m, w := assistantMessageToChatCompletions(msg)
			warnings = append(warnings, w...)
			out.Messages = append(out.Messages, m)
		}
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, chatcompletions.Tool{
			Type: "function",
			Function: chatcompletions.ToolFunction{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.InputSchema,
			},
		})
	}

	out.ToolChoice = toolChoiceToChatCompletions(req.ToolChoice)

	return out, warnings
}

func intPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// systemMessageFromAnthropic implements the system-prompt rule: string
// passes through; an array of text blocks joins with "\n\n".
func systemMessageFromAnthropic(system any) (string, bool) {
	switch v := system.(type) {
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	default:
		if blocks, ok := anthropicmsg.DecodeSystemBlocks(system); ok && len(blocks) > 0 {
			texts := make([]string, 0, len(blocks))
			for _, b := range blocks {
				texts = append(texts, b.Text)
			}
			return strings.Join(texts, "\n\n"), true
		}
	}
	return "", false
}

// splitToolResults separates tool_result blocks (emitted first) from the
// rest of a user turn's content, preserving relative order within each group.
func splitToolResults(content []anthropicmsg.ContentBlock) (toolResults []anthropicmsg.ToolResultBlock, remainder []anthropicmsg.ContentBlock) {
	for _, block := range content {
		if tr, ok := block.(anthropicmsg.ToolResultBlock); ok {
			toolResults = append(toolResults, tr)
		} else {
			remainder = append(remainder, block)
		}
	}
	return toolResults, remainder
}

// flattenToolResultContent renders a tool_result's content as the plain
// string a ChatCompletions role=tool message expects.
func flattenToolResultContent(tr anthropicmsg.ToolResultBlock) string {
	switch v := tr.Content.(type) {
	case string:
		return v
	case []anthropicmsg.ContentBlock:
		var sb strings.Builder
		for _, part := range v {
			if t, ok := part.(anthropicmsg.TextBlock); ok {
				sb.WriteString(t.Text)
			}
		}
		return sb.String()
	default:
		return ""
	}
}

// flattenUserContent collapses a user turn's remaining content to a plain
// string when no image blocks are present, else to an ordered list of
// {text}/{image_url} parts.
func flattenUserContent(content []anthropicmsg.ContentBlock) (any, []Warning) {
	var warnings []Warning
	hasImage := false
	for _, block := range content {
		if block.ContentType() == "image" {
			hasImage = true
			break
		}
	}

	if !hasImage {
		var sb strings.Builder
		for _, block := range content {
			if t, ok := block.(anthropicmsg.TextBlock); ok {
				sb.WriteString(t.Text)
			}
		}
		return sb.String(), warnings
	}

	var parts []chatcompletions.ContentPart
	for _, block := range content {
		switch b := block.(type) {
		case anthropicmsg.TextBlock:
			parts = append(parts, chatcompletions.ContentPart{Type: "text", Text: b.Text})
		case anthropicmsg.ImageBlock:
			url := imageSourceToURL(b.Source)
			if url != "" {
				parts = append(parts, chatcompletions.ContentPart{Type: "image_url", ImageURL: &chatcompletions.ImageURL{URL: url}})
			} else {
				warnings = append(warnings, Warning{Type: "unsupported-content", Message: "image block missing both url and base64 data"})
			}
		default:
			warnings = append(warnings, Warning{Type: "unsupported-content", Message: "dropped content block of type " + block.ContentType()})
		}
	}
	return parts, warnings
}

func imageSourceToURL(src anthropicmsg.ImageSource) string {
	if src.URL != "" {
		return src.URL
	}
	if src.Data != "" {
		return imageutil.DataURIFromBase64(src.MediaType, src.Data)
	}
	return ""
}

// assistantMessageToChatCompletions implements the assistant-turn mapping:
// thinking blocks aggregate into reasoning_text/reasoning_opaque, tool_use
// blocks become tool_calls, text blocks become the textual content.
func assistantMessageToChatCompletions(msg anthropicmsg.Message) (chatcompletions.Message, []Warning) {
	var warnings []Warning
	out := chatcompletions.Message{Role: "assistant"}

	var thinkingTexts []string
	var signature string
	var textParts []string

	for _, block := range msg.Content {
		switch b := block.(type) {
		case anthropicmsg.ThinkingBlock:
			thinkingTexts = append(thinkingTexts, b.Thinking)
			if signature == "" && b.Signature != "" {
				signature = b.Signature
			}
		case anthropicmsg.TextBlock:
			textParts = append(textParts, b.Text)
		case anthropicmsg.ToolUseBlock:
			out.ToolCalls = append(out.ToolCalls, chatcompletions.ToolCall{
				ID:   b.ID,
				Type: "function",
				Function: chatcompletions.ToolCallFunction{
					Name:      b.Name,
					Arguments: StringifyArguments(b.Input),
				},
			})
		default:
			warnings = append(warnings, Warning{Type: "unsupported-content", Message: "dropped assistant content block of type " + block.ContentType()})
		}
	}

	if len(thinkingTexts) > 0 {
		out.ReasoningText = strings.Join(thinkingTexts, "\n\n")
	}
	if signature != "" {
		out.ReasoningOpaque = signature
	}
	out.Content = strings.Join(textParts, "")

	return out, warnings
}

// toolChoiceToChatCompletions implements the tool_choice conversion:
// auto->auto, any->required, tool{name}->{type:function,function:{name}}, none->none.
func toolChoiceToChatCompletions(choice any) any {
	switch c := choice.(type) {
	case anthropicmsg.ToolChoiceAuto:
		switch c.Type {
		case "any":
			return "required"
		case "none":
			return "none"
		default:
			return "auto"
		}
	case anthropicmsg.ToolChoiceTool:
		return chatcompletions.ToolChoiceFunction{
			Type:     "function",
			Function: chatcompletions.ToolChoiceFunctionName{Name: c.Name},
		}
	case map[string]any:
		// Decoded from JSON without a concrete Go type: dispatch on "type".
		t, _ := c["type"].(string)
		switch t {
		case "auto":
			return "auto"
		case "any":
			return "required"
		case "none":
			return "none"
		case "tool":
			name, _ := c["name"].(string)
			return chatcompletions.ToolChoiceFunction{
				Type:     "function",
				Function: chatcompletions.ToolChoiceFunctionName{Name: name},
			}
		}
	}
	return nil
}
