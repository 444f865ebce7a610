package translate

import (
	"regexp"
	"strings"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/dialect/responses"
)

// agentGuidancePreamble is appended to the system/instructions text for
// Anthropic requests that carry tools, so the Responses upstream receives
// the same agentic tool-use conventions an Anthropic-native client assumes
// (Bash/BashOutput/TodoWrite usage rules). Spec §4.2.
const agentGuidancePreamble = "When using the Bash tool, prefer non-interactive commands and inspect long-running output with BashOutput rather than re-running the command. Track multi-step work with TodoWrite and keep exactly one todo in_progress at a time."

var userIDPattern = regexp.MustCompile(`^user_(.+?)_account.*?_session_(.+)$`)

// AnthropicRequestOptions carries request-derived flags the translator needs
// but that live outside the Anthropic request body itself (parsed headers).
type AnthropicRequestOptions struct {
	// SkipAgentPreamble is set when the anthropic-beta header identifies a
	// tool-less warmup ping (SPEC_FULL.md §4.6): the preamble is tool-oriented
	// and would be noise on a request with zero tools.
	SkipAgentPreamble bool
}

// AnthropicToResponses implements spec §4.2's Anthropic→Responses request
// mapping. Grounded on pkg/providers/openresponses/convert.go's
// ConvertToOpenResponsesInput, generalized from an AI-SDK canonical message
// list to Anthropic's own typed content blocks.
func AnthropicToResponses(req *anthropicmsg.Request, opts AnthropicRequestOptions) (*responses.Request, []Warning) {
	var warnings []Warning
	var input []any

	instructions, instructionsIsArray := instructionsFromAnthropicSystem(req.System)
	if !opts.SkipAgentPreamble && len(req.Tools) > 0 {
		if instructionsIsArray {
			// Folded into first system text block per spec: append to the
			// joined instructions text directly, since Responses flattens
			// instructions to one string regardless of source shape.
			instructions = strings.TrimRight(instructions, "\n") + "\n\n" + agentGuidancePreamble
		} else if instructions != "" {
			instructions = instructions + "\n\n" + agentGuidancePreamble
		} else {
			instructions = agentGuidancePreamble
		}
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case "user":
			items, w := userTurnToResponsesInput(msg.Content)
			warnings = append(warnings, w...)
			input = append(input, items...)

		case "assistant":
			items, w := assistantTurnToResponsesInput(msg.Content)
			warnings = append(warnings, w...)
			input = append(input, items...)
		}
	}

	out := &responses.Request{
		Model:        req.Model,
		Input:        input,
		Instructions: instructions,
		Stream:       req.Stream,
	}
	if req.MaxTokens > 0 {
		out.MaxOutputTokens = &req.MaxTokens
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, responses.FunctionTool{
			Type:        "function",
			Name:        t.Name,
			Description: t.Description,
			Parameters:  t.InputSchema,
		})
	}
	out.ToolChoice = toolChoiceToResponses(req.ToolChoice)

	if req.Metadata != nil && req.Metadata.UserID != "" {
		if m := userIDPattern.FindStringSubmatch(req.Metadata.UserID); m != nil {
			out.Metadata = &responses.RequestMetadata{
				SafetyIdentifier: m[1],
				PromptCacheKey:   m[2],
			}
		}
	}

	store := false
	parallel := true
	out.Store = &store
	out.ParallelToolCalls = &parallel
	out.Reasoning = &responses.ReasoningConfig{Effort: "high", Summary: "auto"}
	out.Include = []string{"reasoning.encrypted_content"}

	return out, warnings
}

// instructionsFromAnthropicSystem returns the flattened instructions text and
// whether the source was the array-of-text-blocks form (vs. a plain string).
func instructionsFromAnthropicSystem(system any) (string, bool) {
	if s, ok := system.(string); ok {
		return s, false
	}
	if blocks, ok := anthropicmsg.DecodeSystemBlocks(system); ok {
		texts := make([]string, 0, len(blocks))
		for _, b := range blocks {
			texts = append(texts, b.Text)
		}
		return strings.Join(texts, "\n\n"), true
	}
	return "", false
}

func userTurnToResponsesInput(content []anthropicmsg.ContentBlock) ([]any, []Warning) {
	var warnings []Warning
	var items []any

	toolResults, remainder := splitToolResults(content)

	// Plain content first unless it's empty, matching "preceding message item
	// iff non-empty" (spec §8); tool_results flush as their own top-level
	// items regardless of position relative to plain content in this
	// direction (Responses has no ordering requirement the way ChatCompletions
	// does — only the ChatCompletions target enforces tool_result-before-user).
	if len(remainder) > 0 {
		parts, w := userContentToResponsesParts(remainder)
		warnings = append(warnings, w...)
		items = append(items, responses.MessageItem{
			Type:    "message",
			Role:    "user",
			Content: collapseSingleText(parts),
		})
	}

	for _, tr := range toolResults {
		status := "completed"
		if tr.IsError {
			status = "incomplete"
		}
		items = append(items, responses.FunctionCallOutputItem{
			Type:   "function_call_output",
			CallID: tr.ToolUseID,
			Output: flattenToolResultContent(tr),
			Status: status,
		})
	}

	return items, warnings
}

func userContentToResponsesParts(content []anthropicmsg.ContentBlock) ([]any, []Warning) {
	var warnings []Warning
	var parts []any
	for _, block := range content {
		switch b := block.(type) {
		case anthropicmsg.TextBlock:
			parts = append(parts, responses.InputTextContent{Type: "input_text", Text: b.Text})
		case anthropicmsg.ImageBlock:
			url := imageSourceToURL(b.Source)
			if url == "" {
				warnings = append(warnings, Warning{Type: "unsupported-content", Message: "image block missing both url and base64 data"})
				continue
			}
			parts = append(parts, responses.InputImageContent{Type: "input_image", ImageURL: url})
		default:
			warnings = append(warnings, Warning{Type: "unsupported-content", Message: "dropped content block of type " + block.ContentType()})
		}
	}
	return parts, warnings
}

// collapseSingleText returns a bare string when parts is a single input_text
// element, else the ordered parts list, per spec §4.2.
func collapseSingleText(parts []any) any {
	if len(parts) == 1 {
		if t, ok := parts[0].(responses.InputTextContent); ok {
			return t.Text
		}
	}
	return parts
}

func assistantTurnToResponsesInput(content []anthropicmsg.ContentBlock) ([]any, []Warning) {
	var warnings []Warning
	var items []any
	var pendingText []responses.OutputTextContent

	flush := func() {
		if len(pendingText) == 0 {
			return
		}
		parts := make([]any, len(pendingText))
		for i, p := range pendingText {
			parts[i] = p
		}
		items = append(items, responses.MessageItem{Type: "message", Role: "assistant", Content: parts})
		pendingText = nil
	}

	for _, block := range content {
		switch b := block.(type) {
		case anthropicmsg.ThinkingBlock:
			pendingText = append(pendingText, responses.OutputTextContent{Type: "output_text", Text: b.Thinking})
		case anthropicmsg.TextBlock:
			pendingText = append(pendingText, responses.OutputTextContent{Type: "output_text", Text: b.Text})
		case anthropicmsg.ToolUseBlock:
			flush()
			items = append(items, responses.FunctionCallItem{
				Type:      "function_call",
				CallID:    b.ID,
				Name:      b.Name,
				Arguments: StringifyArguments(b.Input),
				Status:    "completed",
			})
		default:
			warnings = append(warnings, Warning{Type: "unsupported-content", Message: "dropped assistant content block of type " + block.ContentType()})
		}
	}
	flush()

	return items, warnings
}

func toolChoiceToResponses(choice any) any {
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
		return map[string]any{"type": "function", "name": c.Name}
	case map[string]any:
		t, _ := c["type"].(string)
		switch t {
		case "any":
			return "required"
		case "none":
			return "none"
		case "tool":
			name, _ := c["name"].(string)
			return map[string]any{"type": "function", "name": name}
		case "auto":
			return "auto"
		}
	}
	return nil
}
