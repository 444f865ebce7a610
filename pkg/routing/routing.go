// Package routing implements C5: picking which upstream dialect a model
// speaks and deriving the per-request vision/initiator flags the external
// HTTP client turns into headers.
package routing

import "github.com/copilot-gateway/gateway/pkg/dialect/responses"

// UpstreamDialect names which wire dialect the selected model speaks
// natively.
type UpstreamDialect string

const (
	DialectResponses       UpstreamDialect = "responses"
	DialectChatCompletions UpstreamDialect = "chatcompletions"
)

// Catalog is the subset of C8's model catalog routing needs.
type Catalog interface {
	SupportsResponses(model string) bool
}

// SelectUpstreamDialect implements spec §4.5: a model routes to Responses iff
// its supported_endpoints includes "/responses"; otherwise ChatCompletions.
func SelectUpstreamDialect(catalog Catalog, model string) UpstreamDialect {
	if catalog.SupportsResponses(model) {
		return DialectResponses
	}
	return DialectChatCompletions
}

// Options are the derived per-request flags the upstream client turns into
// X-Vision-Request/X-Initiator headers.
type Options struct {
	Vision    bool
	Initiator string
}

// DeriveOptions implements spec §4.5's vision/initiator derivation over an
// already-built Responses payload's input items.
func DeriveOptions(req *responses.Request) Options {
	return Options{
		Vision:    hasVisionInput(req.Input),
		Initiator: deriveInitiator(req.Input),
	}
}

// hasVisionInput recursively scans the input for any input_image content
// part.
func hasVisionInput(input any) bool {
	items, ok := input.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if msg, ok := item.(responses.MessageItem); ok && messageHasVisionContent(msg.Content) {
			return true
		}
	}
	return false
}

func messageHasVisionContent(content any) bool {
	parts, ok := content.([]any)
	if !ok {
		return false
	}
	for _, part := range parts {
		if _, ok := part.(responses.InputImageContent); ok {
			return true
		}
	}
	return false
}

// deriveInitiator implements spec §4.5: "agent" iff any input item has an
// assistant role or no explicit role (treated as assistant), else "user".
func deriveInitiator(input any) string {
	items, ok := input.([]any)
	if !ok {
		return "user"
	}
	for _, item := range items {
		msg, isMessage := item.(responses.MessageItem)
		if !isMessage {
			// function_call/function_call_output/reasoning items carry no
			// role and are treated as assistant-originated.
			return "agent"
		}
		if msg.Role == "" || msg.Role == "assistant" {
			return "agent"
		}
	}
	return "user"
}
