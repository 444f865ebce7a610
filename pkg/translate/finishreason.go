package translate

// AnthropicStopReasonFromResponses implements spec §4.3's Responses→Anthropic
// stop_reason mapping: status=completed -> end_turn; status=incomplete with
// incomplete_details.reason in {max_output_tokens->max_tokens,
// content_filter->end_turn, tool_use->tool_use}; otherwise null (nil).
//
// Open Question (b), decided in DESIGN.md: status=incomplete with no
// incomplete_details (or an unrecognized reason) maps to nil, matching the
// spec's literal text rather than the "maybe end_turn" ambiguity it flags;
// callers that need a concrete value for a terminal message_delta treat nil
// as "no stop_reason change" and pass null on the wire, exactly as for any
// other nil status.
func AnthropicStopReasonFromResponses(status string, incompleteReason string) *string {
	endTurn := "end_turn"
	maxTokens := "max_tokens"
	toolUse := "tool_use"

	switch status {
	case "completed":
		return &endTurn
	case "incomplete":
		switch incompleteReason {
		case "max_output_tokens":
			return &maxTokens
		case "content_filter":
			return &endTurn
		case "tool_use":
			return &toolUse
		default:
			return nil
		}
	default:
		return nil
	}
}

// ChatCompletionsFinishReasonFromResponses implements spec §4.3's
// Responses→ChatCompletions finish_reason rule.
func ChatCompletionsFinishReasonFromResponses(hasToolCalls bool) string {
	if hasToolCalls {
		return "tool_calls"
	}
	return "stop"
}
