package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/copilot-gateway/gateway/pkg/dialect/anthropicmsg"
	"github.com/copilot-gateway/gateway/pkg/routing"
	"github.com/copilot-gateway/gateway/pkg/sseutil"
	"github.com/copilot-gateway/gateway/pkg/stream"
	"github.com/copilot-gateway/gateway/pkg/translate"
	"github.com/copilot-gateway/gateway/pkg/upstream"
)

// handleMessages implements POST /v1/messages (spec.md §6). The
// `anthropic-beta` header's claude-code prefix both exempts mcp__-prefixed
// tools from the count-tokens adjustment (handled in handler_count_tokens.go)
// and, for this endpoint, marks a request as an agentic-client warmup ping
// when it carries zero tools: such pings get routed to the configured small
// model and skip the tool-oriented agent-guidance preamble (spec.md §4.2).
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	var req anthropicmsg.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidRequest(w, "malformed request body: "+err.Error())
		return
	}

	claudeCode := strings.HasPrefix(r.Header.Get("anthropic-beta"), "claude-code")
	isWarmupPing := claudeCode && len(req.Tools) == 0
	if isWarmupPing {
		if small := s.settings.GetSmallModel(); small != "" {
			req.Model = small
		}
	}

	if _, ok := s.catalog.Lookup(req.Model); !ok {
		invalidRequest(w, "unknown model: "+req.Model)
		return
	}

	dialect := routing.SelectUpstreamDialect(s.catalog, req.Model)
	tagUpstreamDialect(r.Context(), string(dialect))

	if dialect == routing.DialectChatCompletions {
		s.messagesViaChatCompletions(w, r, &req)
		return
	}
	s.messagesViaResponses(w, r, &req, isWarmupPing)
}

func (s *Server) messagesViaChatCompletions(w http.ResponseWriter, r *http.Request, req *anthropicmsg.Request) {
	ccReq, warnings := translate.AnthropicToChatCompletions(req)
	logTranslationWarnings(warnings)

	result, events, err := s.upstream.CreateChatCompletions(r.Context(), ccReq)
	if err != nil {
		writeError(w, err)
		return
	}

	if events == nil {
		out, warnings := translate.ChatCompletionsToAnthropic(result.Response, uuid.NewString())
		logTranslationWarnings(warnings)
		writeJSON(w, out)
		return
	}
	defer events.Close()

	setSSEHeaders(w)
	flusher, _ := w.(http.Flusher)
	sw := sseutil.NewWriter(w)

	translator := stream.NewAnthropicFromChatCompletions(req.Model)
	_ = translator.Run(events, func(ev anthropicmsg.StreamEvent) {
		writeAnthropicEvent(sw, ev)
		if flusher != nil {
			flusher.Flush()
		}
	})
}

func (s *Server) messagesViaResponses(w http.ResponseWriter, r *http.Request, req *anthropicmsg.Request, isWarmupPing bool) {
	respReq, warnings := translate.AnthropicToResponses(req, translate.AnthropicRequestOptions{
		SkipAgentPreamble: isWarmupPing,
	})
	logTranslationWarnings(warnings)

	if extra := s.settings.GetExtraPromptForModel(req.Model); extra != "" {
		respReq.Instructions = strings.TrimRight(respReq.Instructions, "\n") + "\n\n" + extra
	}

	opts := routing.DeriveOptions(respReq)
	result, events, err := s.upstream.CreateResponses(r.Context(), respReq, upstream.RequestOptions{
		Vision:    opts.Vision,
		Initiator: opts.Initiator,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if events == nil {
		out, warnings := translate.ResponsesToAnthropic(result.Response, uuid.NewString(), req.Model)
		logTranslationWarnings(warnings)
		writeJSON(w, out)
		return
	}
	defer events.Close()

	setSSEHeaders(w)
	flusher, _ := w.(http.Flusher)
	sw := sseutil.NewWriter(w)

	translator := stream.NewAnthropicFromResponses()
	_ = translator.Run(events, func(ev anthropicmsg.StreamEvent) {
		writeAnthropicEvent(sw, ev)
		if flusher != nil {
			flusher.Flush()
		}
	})
}
