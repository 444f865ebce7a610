// Package tokencount is C12: a best-effort heuristic token counter backing
// POST /v1/messages/count_tokens. No tokenizer library appears anywhere in
// the example pack (the teacher counts tokens by reading them back off
// provider usage envelopes, never by local estimation), so this is one of
// the few packages built on nothing but the standard library -- there is no
// ecosystem dependency to ground it on, and spec.md §1/§6 explicitly scope
// a real tokenizer out as "used only by the token-count handler, not by
// translation".
package tokencount

import (
	"math"
	"strings"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
)

// bytesPerToken is the fixed approximation ratio: English prose averages
// roughly 4 bytes per BPE token across the model families this gateway
// routes to.
const bytesPerToken = 4.0

// TokenCounter estimates the input/output token cost of an Anthropic-shaped
// request, independent of which concrete model ultimately serves it.
type TokenCounter interface {
	Count(payload anthropicmsg.CountTokensRequest, model string) (input, output int)
}

// HeuristicCounter implements TokenCounter via whitespace/byte-length
// estimation. It never calls out to the upstream and always returns
// output=0, since count_tokens only estimates the prompt side.
type HeuristicCounter struct{}

// Count implements TokenCounter.
func (HeuristicCounter) Count(payload anthropicmsg.CountTokensRequest, model string) (input, output int) {
	var text strings.Builder

	if s, ok := payload.System.(string); ok {
		text.WriteString(s)
		text.WriteByte('\n')
	} else if blocks, ok := anthropicmsg.DecodeSystemBlocks(payload.System); ok {
		for _, b := range blocks {
			text.WriteString(b.Text)
			text.WriteByte('\n')
		}
	}

	for _, msg := range payload.Messages {
		for _, block := range msg.Content {
			writeBlockText(&text, block)
		}
	}

	for _, tool := range payload.Tools {
		text.WriteString(tool.Name)
		text.WriteByte('\n')
		text.WriteString(tool.Description)
		text.WriteByte('\n')
	}

	return estimateTokens(text.String()), 0
}

func writeBlockText(w *strings.Builder, block anthropicmsg.ContentBlock) {
	switch b := block.(type) {
	case anthropicmsg.TextBlock:
		w.WriteString(b.Text)
		w.WriteByte('\n')
	case anthropicmsg.ThinkingBlock:
		w.WriteString(b.Thinking)
		w.WriteByte('\n')
	case anthropicmsg.ToolUseBlock:
		for k, v := range b.Input {
			w.WriteString(k)
			if s, ok := v.(string); ok {
				w.WriteString(s)
			}
			w.WriteByte('\n')
		}
	case anthropicmsg.ToolResultBlock:
		if s, ok := b.Content.(string); ok {
			w.WriteString(s)
			w.WriteByte('\n')
		}
	case anthropicmsg.ImageBlock:
		// Fixed per-image token cost approximation; image byte payloads
		// aren't proportional to their token cost the way text is.
		w.WriteString(strings.Repeat("x", 1600))
	}
}

func estimateTokens(s string) int {
	if strings.TrimSpace(s) == "" {
		return 0
	}
	return int(math.Ceil(float64(len(s)) / bytesPerToken))
}
