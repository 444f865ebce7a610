package translate

import (
	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

// ChatCompletionsToResponsesOptions carries config-derived lookups the
// translator needs (spec §4.2: "reasoning effort defaults to high; a small
// config lookup may override per model").
type ChatCompletionsToResponsesOptions struct {
	ReasoningEffort func(model string) string
}

// ChatCompletionsToResponses implements spec §4.2's ChatCompletions→Responses
// request mapping.
func ChatCompletionsToResponses(req *chatcompletions.Request, opts ChatCompletionsToResponsesOptions) (*responses.Request, []Warning) {
	var warnings []Warning
	var input []any

	instructions := ""
	consumedSystem := false

	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			if !consumedSystem {
				if s, ok := msg.Content.(string); ok {
					instructions = s
					consumedSystem = true
					continue
				}
			}
			// Subsequent system messages (or non-string first one) fall
			// through as ordinary message items below.
			item, w := chatMessageToResponsesItems(msg)
			warnings = append(warnings, w...)
			input = append(input, item...)

		case "tool":
			input = append(input, responses.FunctionCallOutputItem{
				Type:   "function_call_output",
				CallID: msg.ToolCallID,
				Output: stringifyToolMessageContent(msg.Content),
			})

		case "assistant":
			items, w := assistantChatMessageToResponsesItems(msg)
			warnings = append(warnings, w...)
			input = append(input, items...)

		default: // user, developer
			items, w := chatMessageToResponsesItems(msg)
			warnings = append(warnings, w...)
			input = append(input, items...)
		}
	}

	out := &responses.Request{
		Model:        req.Model,
		Input:        input,
		Instructions: instructions,
		Stream:       req.Stream,
		MaxOutputTokens: req.MaxTokens,
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, responses.FunctionTool{
			Type:        "function",
			Name:        t.Function.Name,
			Description: t.Function.Description,
			Parameters:  t.Function.Parameters,
		})
	}
	out.ToolChoice = req.ToolChoice

	effort := "high"
	if opts.ReasoningEffort != nil {
		if v := opts.ReasoningEffort(req.Model); v != "" {
			effort = v
		}
	}
	parallel := true
	out.ParallelToolCalls = &parallel
	out.Reasoning = &responses.ReasoningConfig{Effort: effort, Summary: "detailed"}
	out.Include = []string{"reasoning.encrypted_content"}

	return out, warnings
}

func stringifyToolMessageContent(content any) string {
	if s, ok := content.(string); ok {
		return s
	}
	b, err := jsonMarshalCompact(content)
	if err != nil {
		return ""
	}
	return b
}

func chatMessageToResponsesItems(msg chatcompletions.Message) ([]any, []Warning) {
	var warnings []Warning
	content, w := chatContentToResponsesParts(msg.Content)
	warnings = append(warnings, w...)
	return []any{responses.MessageItem{Type: "message", Role: msg.Role, Content: content}}, warnings
}

func chatContentToResponsesParts(content any) (any, []Warning) {
	var warnings []Warning
	switch v := content.(type) {
	case string:
		return v, warnings
	case []chatcompletions.ContentPart:
		var parts []any
		for _, p := range v {
			switch p.Type {
			case "text":
				parts = append(parts, responses.InputTextContent{Type: "input_text", Text: p.Text})
			case "image_url":
				if p.ImageURL != nil {
					parts = append(parts, responses.InputImageContent{Type: "input_image", ImageURL: p.ImageURL.URL, Detail: p.ImageURL.Detail})
				}
			default:
				warnings = append(warnings, Warning{Type: "unsupported-content", Message: "dropped content part of type " + p.Type})
			}
		}
		return parts, warnings
	default:
		return "", warnings
	}
}

// assistantChatMessageToResponsesItems implements spec §4.2: an assistant
// message emits an optional message item (if content non-empty) followed by
// one function_call item per tool call.
func assistantChatMessageToResponsesItems(msg chatcompletions.Message) ([]any, []Warning) {
	var items []any
	var warnings []Warning

	if hasNonEmptyChatContent(msg.Content) {
		content, w := chatContentToResponsesParts(msg.Content)
		warnings = append(warnings, w...)
		items = append(items, responses.MessageItem{Type: "message", Role: "assistant", Content: content})
	}

	for _, tc := range msg.ToolCalls {
		items = append(items, responses.FunctionCallItem{
			Type:      "function_call",
			CallID:    tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
			Status:    "completed",
		})
	}

	return items, warnings
}

func hasNonEmptyChatContent(content any) bool {
	switch v := content.(type) {
	case string:
		return v != ""
	case []chatcompletions.ContentPart:
		return len(v) > 0
	default:
		return false
	}
}
