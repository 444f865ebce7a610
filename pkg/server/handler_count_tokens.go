package server

import (
	"encoding/json"
	"math"
	"net/http"
	"strings"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
)

// handleCountTokens implements POST /v1/messages/count_tokens (spec.md §6).
// The adjustment arithmetic is independent of which TokenCounter backs the
// raw estimate: if tools are present and not exempted by the claude-code
// mcp__ rule, add a flat per-family amount, then scale by a flat per-family
// multiplier, rounding the final result.
func (s *Server) handleCountTokens(w http.ResponseWriter, r *http.Request) {
	var req anthropicmsg.CountTokensRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidRequest(w, "malformed request body: "+err.Error())
		return
	}

	input, _ := s.tokenCounter.Count(req, req.Model)
	total := applyCountTokensAdjustment(float64(input), req.Model, req.Tools, r.Header.Get("anthropic-beta"))

	writeJSON(w, anthropicmsg.CountTokensResponse{InputTokens: int(math.Round(total))})
}

// applyCountTokensAdjustment implements spec.md §6's exact arithmetic: +346
// for claude* / +480 for grok* when tools are present without an mcp__
// exemption, then ×1.15 for claude* / ×1.03 for grok*. Models outside both
// families pass through unscaled, since neither constant is specified for
// them.
func applyCountTokensAdjustment(rawTokens float64, model string, tools []anthropicmsg.Tool, betaHeader string) float64 {
	claudeCodeExempt := strings.HasPrefix(betaHeader, "claude-code") && hasMCPTool(tools)
	hasTools := len(tools) > 0 && !claudeCodeExempt

	total := rawTokens
	switch {
	case strings.HasPrefix(model, "claude"):
		if hasTools {
			total += 346
		}
		total *= 1.15
	case strings.HasPrefix(model, "grok"):
		if hasTools {
			total += 480
		}
		total *= 1.03
	}
	return total
}

func hasMCPTool(tools []anthropicmsg.Tool) bool {
	for _, t := range tools {
		if strings.HasPrefix(t.Name, "mcp__") {
			return true
		}
	}
	return false
}
