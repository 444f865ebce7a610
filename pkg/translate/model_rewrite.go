package translate

import "strings"

// RewriteModelForChatCompletions implements spec §4.2's model-name
// collapsing rule: dated Sonnet/Opus 4 variants collapse to the bare alias
// so the upstream's ChatCompletions catalog (which only lists the bare
// aliases) can resolve them.
func RewriteModelForChatCompletions(model string) string {
	switch {
	case strings.HasPrefix(model, "claude-sonnet-4-"):
		return "claude-sonnet-4"
	case strings.HasPrefix(model, "claude-opus-4-"):
		return "claude-opus-4"
	default:
		return model
	}
}
