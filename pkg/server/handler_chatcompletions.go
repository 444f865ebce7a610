package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/copilot-gateway/gateway/pkg/dialect/chatcompletions"
	"github.com/copilot-gateway/gateway/pkg/routing"
	"github.com/copilot-gateway/gateway/pkg/sseutil"
	"github.com/copilot-gateway/gateway/pkg/stream"
	"github.com/copilot-gateway/gateway/pkg/translate"
	"github.com/copilot-gateway/gateway/pkg/upstream"
)

// handleChatCompletions implements POST /v1/chat/completions (spec.md §6).
// A model that speaks ChatCompletions natively is forwarded unchanged; a
// model that only speaks Responses is translated through C2/C3/C4.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatcompletions.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		invalidRequest(w, "malformed request body: "+err.Error())
		return
	}
	if _, ok := s.catalog.Lookup(req.Model); !ok {
		invalidRequest(w, "unknown model: "+req.Model)
		return
	}

	dialect := routing.SelectUpstreamDialect(s.catalog, req.Model)
	tagUpstreamDialect(r.Context(), string(dialect))

	if dialect == routing.DialectChatCompletions {
		s.proxyChatCompletions(w, r, &req)
		return
	}
	s.chatCompletionsViaResponses(w, r, &req)
}

// proxyChatCompletions handles the case where client dialect and upstream
// dialect are the same: no C2/C3/C4 translation needed, only the SSE/JSON
// envelope is re-framed.
func (s *Server) proxyChatCompletions(w http.ResponseWriter, r *http.Request, req *chatcompletions.Request) {
	result, events, err := s.upstream.CreateChatCompletions(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	if events == nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result.Response)
		return
	}
	defer events.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	sw := sseutil.NewWriter(w)

	for {
		raw, err := events.Next()
		if raw != nil {
			_ = sw.WriteData(raw.Data)
			if flusher != nil {
				flusher.Flush()
			}
			if sseutil.IsDoneSentinel(raw.Data) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// chatCompletionsViaResponses translates a ChatCompletions client request
// into a Responses upstream call, then translates the result back.
func (s *Server) chatCompletionsViaResponses(w http.ResponseWriter, r *http.Request, req *chatcompletions.Request) {
	respReq, warnings := translate.ChatCompletionsToResponses(req, translate.ChatCompletionsToResponsesOptions{
		ReasoningEffort: s.settings.GetReasoningEffortForModel,
	})
	logTranslationWarnings(warnings)

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
		out, warnings := translate.ResponsesToChatCompletions(result.Response, uuid.NewString())
		logTranslationWarnings(warnings)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
		return
	}
	defer events.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	sw := sseutil.NewWriter(w)

	translator := stream.NewChatCompletionsFromResponses()
	_ = translator.Run(events, func(chunk *chatcompletions.StreamChunk, done bool) {
		if chunk != nil {
			data, _ := json.Marshal(chunk)
			_ = sw.WriteData(string(data))
		}
		if done {
			_ = sw.WriteDone()
		}
		if flusher != nil {
			flusher.Flush()
		}
	})
}
